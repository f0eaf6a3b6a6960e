// Command koans serves the Greed, triangle and screenplay koans over HTTP
// and runs them from the command line.
package main

func main() {
	Execute()
}
