// Package script extracts scenes and speaking roles from screenplay pages
// in the layout used by imsdb.com: the script lives in a <pre> inside
// <td class="scrtext">, scene headings and character cues are set in <b>.
package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// DefaultURL is the draft of Star Wars: A New Hope.
const DefaultURL = "http://www.imsdb.com/scripts/Star-Wars-A-New-Hope.html"

// ErrNoScript is returned when a page has no td.scrtext block.
var ErrNoScript = errors.New("script: page contains no screenplay")

var (
	scriptBlock = cascadia.MustCompile("td.scrtext")
	scriptPre   = cascadia.MustCompile("td.scrtext > pre")
	scriptBold  = cascadia.MustCompile("td.scrtext b")
)

// mdConverter is goroutine-safe and shared by all Markdown calls.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

// Parse parses raw HTML into a document.
func Parse(rawHTML string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("script: parse html: %w", err)
	}
	return doc, nil
}

// HasScript reports whether doc contains a screenplay block.
func HasScript(doc *goquery.Document) bool {
	return doc != nil && doc.FindMatcher(scriptBlock).Length() > 0
}

// Lines returns every text node below td.scrtext > pre in document order,
// unmodified. A script line split by markup yields several entries.
func Lines(doc *goquery.Document) []string {
	var lines []string
	doc.FindMatcher(scriptPre).Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			lines = appendText(lines, n)
		}
	})
	return lines
}

// BoldLines returns the text nodes that are direct children of <b>
// elements inside td.scrtext.
func BoldLines(doc *goquery.Document) []string {
	var lines []string
	doc.FindMatcher(scriptBold).Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					lines = append(lines, c.Data)
				}
			}
		}
	})
	return lines
}

// Markdown renders the screenplay block of doc as Markdown.
func Markdown(doc *goquery.Document) (string, error) {
	block := doc.FindMatcher(scriptBlock).First()
	if block.Length() == 0 {
		return "", ErrNoScript
	}
	raw, err := goquery.OuterHtml(block)
	if err != nil {
		return "", fmt.Errorf("script: render block: %w", err)
	}
	md, err := mdConverter.ConvertString(raw)
	if err != nil {
		return "", fmt.Errorf("script: convert to markdown: %w", err)
	}
	return md, nil
}

// appendText collects the text nodes of n's subtree in document order.
func appendText(dst []string, n *html.Node) []string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			dst = append(dst, c.Data)
		case html.ElementNode:
			dst = appendText(dst, c)
		}
	}
	return dst
}
