package quizflow

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// Shuffler permutes n elements in place through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewShuffler returns a PCG-backed source. A zero seed is replaced by the clock.
func NewShuffler(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Round is one forced two-choice comparison.
type Round [2]model.Choice

// PairPlan is the ordered list of rounds for a oneInTwo quiz.
type PairPlan struct {
	Rounds []Round
	// Dropped holds the choice left without a partner when the count is odd.
	Dropped []model.Choice
}

// GeneratePairs shuffles the choices with rng and greedily pairs them.
//
// Scanning the shuffled list left to right, each unpaired choice is matched
// with the first later unpaired choice that shares a tag dimension but
// disagrees on at least one value. When none exists it takes the first later
// unpaired choice. A choice with nobody left to pair with is dropped.
func GeneratePairs(choices []model.Choice, rng Shuffler) (PairPlan, error) {
	if err := uniqueChoices(choices); err != nil {
		return PairPlan{}, err
	}

	perm := make([]model.Choice, len(choices))
	copy(perm, choices)
	rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

	var plan PairPlan
	picked := make([]bool, len(perm))
	for i := range perm {
		if picked[i] {
			continue
		}

		match := -1
		for j := i + 1; j < len(perm); j++ {
			if !picked[j] && contrasting(perm[i], perm[j]) {
				match = j
				break
			}
		}
		if match < 0 {
			for j := i + 1; j < len(perm); j++ {
				if !picked[j] {
					match = j
					break
				}
			}
		}

		picked[i] = true
		if match < 0 {
			plan.Dropped = append(plan.Dropped, perm[i])
			continue
		}
		picked[match] = true
		plan.Rounds = append(plan.Rounds, Round{perm[i], perm[match]})
	}
	return plan, nil
}

// contrasting reports whether l and r share a tag dimension while their
// flattened tag values differ somewhere.
func contrasting(l, r model.Choice) bool {
	shared := false
	for tagID := range l.Tags {
		if _, ok := r.Tags[tagID]; ok {
			shared = true
			break
		}
	}
	if !shared {
		return false
	}

	lv, rv := flatten(l.Tags), flatten(r.Tags)
	for v := range lv {
		if _, ok := rv[v]; !ok {
			return true
		}
	}
	for v := range rv {
		if _, ok := lv[v]; !ok {
			return true
		}
	}
	return false
}

func flatten(tags map[string][]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, values := range tags {
		for _, v := range values {
			out[v] = struct{}{}
		}
	}
	return out
}

// RoundIDs reduces rounds to choice ids for storage.
func RoundIDs(rounds []Round) [][2]string {
	out := make([][2]string, len(rounds))
	for i, r := range rounds {
		out[i] = [2]string{r[0].ID, r[1].ID}
	}
	return out
}

// roundsFromIDs rebuilds rounds from stored ids against the quiz's choices.
func roundsFromIDs(choices []model.Choice, ids [][2]string) ([]Round, error) {
	out := make([]Round, len(ids))
	for i, pair := range ids {
		for side, id := range pair {
			c, ok := model.FindChoice(choices, id)
			if !ok {
				return nil, fmt.Errorf("round %d: %w: %q", i, ErrUnknownChoice, id)
			}
			out[i][side] = c
		}
	}
	return out, nil
}
