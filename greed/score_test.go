package greed

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		dice []int
		want int
	}{
		{"empty list", []int{}, 0},
		{"nil", nil, 0},
		{"single 5", []int{5}, 50},
		{"single 1", []int{1}, 100},
		{"multiple 1s and 5s", []int{1, 5, 5, 1}, 300},
		{"single 2s 3s 4s 6s", []int{2, 3, 4, 6}, 0},
		{"triple 1", []int{1, 1, 1}, 1000},
		{"triple 2", []int{2, 2, 2}, 200},
		{"triple 3", []int{3, 3, 3}, 300},
		{"triple 4", []int{4, 4, 4}, 400},
		{"triple 5", []int{5, 5, 5}, 500},
		{"triple 6", []int{6, 6, 6}, 600},
		{"mixed 2s with a 5", []int{2, 5, 2, 2, 3}, 250},
		{"four 5s", []int{5, 5, 5, 5}, 550},
		{"four 1s and a 5", []int{1, 1, 1, 5, 1}, 1150},
		{"no scoring faces", []int{2, 3, 4, 6, 2}, 0},
		{"triple 3 with a 5", []int{3, 4, 5, 3, 3}, 350},
		{"two 1s and a 5", []int{1, 5, 1, 2, 4}, 250},
		{"one not left out", []int{1, 2, 2, 2}, 300},
		{"one and five not left out", []int{1, 5, 2, 2, 2}, 350},
		{"six 1s", []int{1, 1, 1, 1, 1, 1}, 2000},
		{"out of range values are inert", []int{0, 7, -1, 5}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.dice); got != tt.want {
				t.Errorf("Score(%v) = %d, want %d", tt.dice, got, tt.want)
			}
		})
	}
}

func TestScore_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		dice := make([]int, 1+rng.Intn(MaxDice))
		for j := range dice {
			dice[j] = rng.Intn(6) + 1
		}
		want := Score(dice)

		shuffled := append([]int(nil), dice...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := Score(shuffled); got != want {
			t.Fatalf("Score(%v) = %d but Score(%v) = %d", dice, want, shuffled, got)
		}
	}
}

func TestBreakdown(t *testing.T) {
	got := Breakdown([]int{1, 5, 2, 2, 2, 3})

	wantSteps := []Step{
		{Rule: RuleTriple, Face: 2, Dice: 3, Points: 200},
		{Rule: RuleSingleOne, Face: 1, Dice: 1, Points: 100},
		{Rule: RuleSingleFive, Face: 5, Dice: 1, Points: 50},
	}
	if got.Total != 350 {
		t.Errorf("Total = %d, want 350", got.Total)
	}
	if !reflect.DeepEqual(got.Steps, wantSteps) {
		t.Errorf("Steps = %+v, want %+v", got.Steps, wantSteps)
	}
	if !reflect.DeepEqual(got.Unscored, []int{3}) {
		t.Errorf("Unscored = %v, want [3]", got.Unscored)
	}
}

func TestBreakdown_RemainderScoresNothing(t *testing.T) {
	for _, dice := range [][]int{{1, 1, 1, 5, 1}, {2, 3, 4, 6, 2}, {3, 4, 5, 3, 3}} {
		res := Breakdown(dice)
		if again := Score(res.Unscored); again != 0 {
			t.Errorf("Score(unscored %v of %v) = %d, want 0", res.Unscored, dice, again)
		}
	}
}

func TestBreakdown_EmptyHasNonNilSlices(t *testing.T) {
	res := Breakdown(nil)
	if res.Steps == nil || res.Unscored == nil {
		t.Errorf("Breakdown(nil) = %+v, want empty non-nil slices", res)
	}
}
