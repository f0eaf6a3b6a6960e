package greed

import (
	"errors"
	"math/rand"
)

// MaxDice is the number of dice a Greed player rolls at most.
const MaxDice = 5

// ErrInvalidDiceCount is returned when a roll asks for fewer than one or
// more than MaxDice dice.
var ErrInvalidDiceCount = errors.New("greed: dice count must be between 1 and 5")

// RollRequest describes a roll.
type RollRequest struct {
	// Count is the number of dice, 1..MaxDice.
	Count int

	// Seed drives the random source. The same Seed and Count always produce
	// the same dice.
	Seed int64
}

// Roll is a scored roll of dice.
type Roll struct {
	Dice   []int  `json:"dice"`
	Result Result `json:"result"`
}

// RollDice rolls req.Count six-sided dice and scores them.
func RollDice(req RollRequest) (Roll, error) {
	return RollWithRng(rand.New(rand.NewSource(req.Seed)), req.Count)
}

// RollWithRng rolls count dice from rng and scores them.
func RollWithRng(rng *rand.Rand, count int) (Roll, error) {
	if count < 1 || count > MaxDice {
		return Roll{}, ErrInvalidDiceCount
	}

	dice := make([]int, count)
	for i := range dice {
		dice[i] = rng.Intn(6) + 1
	}
	return Roll{Dice: dice, Result: Breakdown(dice)}, nil
}
