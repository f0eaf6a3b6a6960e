package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/use-agent/koans/script"
)

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestRunScore(t *testing.T) {
	cmd, out := newTestCmd()
	if err := runScore(cmd, []string{"1", "1", "1", "5", "1"}); err != nil {
		t.Fatalf("runScore() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if got := strings.Fields(lines[len(lines)-1]); len(got) != 2 || got[0] != "TOTAL" || got[1] != "1150" {
		t.Errorf("last line = %q, want TOTAL 1150", lines[len(lines)-1])
	}

	cmd, _ = newTestCmd()
	if err := runScore(cmd, []string{"x"}); err == nil {
		t.Error("non-integer face should fail")
	}
}

func TestRunTriangle(t *testing.T) {
	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{[]string{"2", "2", "2"}, "equilateral\n", false},
		{[]string{"3", "4", "5"}, "scalene\n", false},
		{[]string{"1", "1", "3"}, "", true},
		{[]string{"a", "1", "1"}, "", true},
	}
	for _, tt := range tests {
		cmd, out := newTestCmd()
		err := runTriangle(cmd, tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("runTriangle(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if out.String() != tt.want {
			t.Errorf("runTriangle(%v) = %q, want %q", tt.args, out.String(), tt.want)
		}
	}
}

func TestPrintScenes(t *testing.T) {
	scenes, err := script.Extract([]string{"INT. A", "VADER", "VADER", "LEIA"}, script.SceneHeading, script.AnyLine)
	if err != nil {
		t.Fatal(err)
	}

	cmd, out := newTestCmd()
	if err := printScenes(cmd, scenes, 1); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); !strings.Contains(got, "VADER") || strings.Contains(got, "LEIA") {
		t.Errorf("top 1 output = %q", got)
	}

	cmd, out = newTestCmd()
	if err := printScenes(cmd, scenes, 0); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); !strings.HasPrefix(got, "INT. A\n") || !strings.Contains(got, "LEIA") {
		t.Errorf("full output = %q", got)
	}
}
