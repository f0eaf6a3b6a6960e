// Package greed scores rolls of Greed, a dice game where players roll up to
// five six-sided dice to accumulate points.
//
// A roll is scored as follows:
//
//   - a set of three ones is 1000 points;
//   - a set of three of any other face is worth 100 times the face;
//   - a one that is not part of a set of three is 100 points;
//   - a five that is not part of a set of three is 50 points;
//   - everything else is worth 0 points.
//
// Example:
//
//	greed.Score([]int{1, 1, 1, 5, 1}) // 1150
package greed

// Rule names the scoring rule behind a Step.
type Rule string

const (
	RuleTriple     Rule = "triple"
	RuleTripleOnes Rule = "triple_ones"
	RuleSingleOne  Rule = "single_one"
	RuleSingleFive Rule = "single_five"
)

// Step is one award made while reducing a roll.
type Step struct {
	Rule   Rule `json:"rule"`
	Face   int  `json:"face"`
	Dice   int  `json:"dice"`
	Points int  `json:"points"`
}

// Result is the full reduction of a roll.
type Result struct {
	Total int `json:"total"`

	// Steps lists the awards in the order they were made.
	Steps []Step `json:"steps"`

	// Unscored holds the faces left over once no rule applies, ascending.
	// Values outside 1..6 never score and are not listed.
	Unscored []int `json:"unscored"`
}

// faceCounts is a multiset of die faces indexed 1..6; index 0 is unused.
type faceCounts [7]int

func countFaces(dice []int) faceCounts {
	var fc faceCounts
	for _, d := range dice {
		if d >= 1 && d <= 6 {
			fc[d]++
		}
	}
	return fc
}

// take removes n dice showing face and returns the step that awards points.
func (fc *faceCounts) take(rule Rule, face, n, points int) Step {
	fc[face] -= n
	return Step{Rule: rule, Face: face, Dice: n, Points: points}
}

// next picks the next award, or reports false when no remaining face scores.
// Triples of 2..6 are taken before ones so a one is never stranded.
func (fc *faceCounts) next() (Step, bool) {
	for face := 2; face <= 6; face++ {
		if fc[face] >= 3 {
			return fc.take(RuleTriple, face, 3, face*100), true
		}
	}
	switch {
	case fc[1] >= 3:
		return fc.take(RuleTripleOnes, 1, 3, 1000), true
	case fc[1] >= 1:
		return fc.take(RuleSingleOne, 1, 1, 100), true
	case fc[5] >= 1:
		return fc.take(RuleSingleFive, 5, 1, 50), true
	}
	return Step{}, false
}

// Breakdown scores dice and reports every award that made up the total.
func Breakdown(dice []int) Result {
	fc := countFaces(dice)
	res := Result{Steps: []Step{}, Unscored: []int{}}

	for {
		step, ok := fc.next()
		if !ok {
			break
		}
		res.Total += step.Points
		res.Steps = append(res.Steps, step)
	}

	for face := 1; face <= 6; face++ {
		for i := 0; i < fc[face]; i++ {
			res.Unscored = append(res.Unscored, face)
		}
	}
	return res
}

// Score returns the points for a roll. The result does not depend on the
// order of dice, and faces outside 1..6 contribute nothing.
func Score(dice []int) int {
	return Breakdown(dice).Total
}
