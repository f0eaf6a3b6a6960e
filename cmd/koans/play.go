package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/koans/greed"
	"github.com/use-agent/koans/script"
	"github.com/use-agent/koans/triangle"
)

var (
	rollCount  int
	rollSeed   int64
	scenesURL  string
	scenesBold bool
	scenesTop  int
)

var scoreCmd = &cobra.Command{
	Use:   "score <face>...",
	Short: "Score a Greed roll",
	Args:  cobra.MaximumNArgs(greed.MaxDice),
	RunE:  runScore,
}

var rollCmd = &cobra.Command{
	Use:   "roll",
	Short: "Roll and score Greed dice",
	RunE:  runRoll,
}

var triangleCmd = &cobra.Command{
	Use:   "triangle <a> <b> <c>",
	Short: "Classify a triangle by its side lengths",
	Args:  cobra.ExactArgs(3),
	RunE:  runTriangle,
}

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "List scenes and speaking roles of a screenplay",
	RunE:  runScenes,
}

func init() {
	rollCmd.Flags().IntVar(&rollCount, "count", greed.MaxDice, "number of dice to roll")
	rollCmd.Flags().Int64Var(&rollSeed, "seed", 0, "random seed (default: current time)")

	scenesCmd.Flags().StringVar(&scenesURL, "url", "", "screenplay page (default: KOANS_SCRIPT_URL)")
	scenesCmd.Flags().BoolVar(&scenesBold, "bold", false, "extract from bold cue lines only")
	scenesCmd.Flags().IntVar(&scenesTop, "top", 0, "print only the N roles with most phrases")

	rootCmd.AddCommand(scoreCmd, rollCmd, triangleCmd, scenesCmd)
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", a)
		}
		out[i] = n
	}
	return out, nil
}

func printResult(cmd *cobra.Command, dice []int, result greed.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "DICE\t%v\n", dice)
	for _, s := range result.Steps {
		_, _ = fmt.Fprintf(w, "%s\t%dx%d\t%d\n", s.Rule, s.Dice, s.Face, s.Points)
	}
	_, _ = fmt.Fprintf(w, "UNSCORED\t%v\n", result.Unscored)
	_, _ = fmt.Fprintf(w, "TOTAL\t%d\n", result.Total)
	_ = w.Flush()
}

func runScore(cmd *cobra.Command, args []string) error {
	dice, err := parseInts(args)
	if err != nil {
		return err
	}
	printResult(cmd, dice, greed.Breakdown(dice))
	return nil
}

func runRoll(cmd *cobra.Command, args []string) error {
	seed := rollSeed
	if !cmd.Flags().Changed("seed") {
		seed = time.Now().UnixNano()
	}
	roll, err := greed.RollDice(greed.RollRequest{Count: rollCount, Seed: seed})
	if err != nil {
		return err
	}
	printResult(cmd, roll.Dice, roll.Result)
	return nil
}

func runTriangle(cmd *cobra.Command, args []string) error {
	sides, err := parseInts(args)
	if err != nil {
		return err
	}
	kind, err := triangle.Classify(sides[0], sides[1], sides[2])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), kind)
	return err
}

func runScenes(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	stack, err := newFetchStack(cfg)
	if err != nil {
		return err
	}
	defer stack.Close()

	loader := newLoader(cfg, stack.engine)
	defer loader.Close()

	doc, err := loader.Load(cmd.Context(), scenesURL)
	if err != nil {
		return err
	}

	scenePattern := cfg.Script.ScenePattern
	if scenePattern == "" {
		scenePattern = script.SceneHeading
	}
	lines, rolePattern := script.Lines(doc), cfg.Script.RolePattern
	if rolePattern == "" {
		rolePattern = script.RoleName
	}
	if scenesBold {
		lines, rolePattern = script.BoldLines(doc), script.AnyLine
	}

	scenes, err := script.Extract(lines, scenePattern, rolePattern)
	if err != nil {
		return err
	}
	return printScenes(cmd, scenes, scenesTop)
}

func printScenes(cmd *cobra.Command, scenes *script.Scenes, top int) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if top > 0 {
		_, _ = fmt.Fprintln(w, "ROLE\tPHRASES")
		for _, rc := range script.TopRoles(scenes, top) {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", rc.Name, rc.Count)
		}
		return w.Flush()
	}

	for _, sc := range scenes.All() {
		_, _ = fmt.Fprintln(w, sc.Name)
		for _, rc := range sc.Roles {
			_, _ = fmt.Fprintf(w, "  %s\t%d\n", rc.Name, rc.Count)
		}
	}
	return w.Flush()
}
