package quizflow

import (
	"fmt"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// Resolve picks the result that best matches the profile.
//
// A result matches when at least one of its criteria values appears in the
// profile under the same dimension. Among matches the highest overlap count
// wins (every accumulated occurrence counts) and ties go to the smallest
// result id. When results.SelectedTags is set only those dimensions count.
// Without a match the DefaultID result is returned.
func Resolve(profile TagProfile, results model.Results) (model.Result, error) {
	// Empty slots in SelectedTags are unset; with none set every dimension counts.
	var allowed map[string]struct{}
	for _, t := range results.SelectedTags {
		if t == "" {
			continue
		}
		if allowed == nil {
			allowed = make(map[string]struct{}, len(results.SelectedTags))
		}
		allowed[t] = struct{}{}
	}

	var (
		best      model.Result
		bestScore int
	)
	for id, r := range results.List {
		score := overlap(profile, r.Tags, allowed)
		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && id < best.ID) {
			best, bestScore = r, score
			best.ID = id
		}
	}
	if bestScore > 0 {
		return best, nil
	}

	if results.DefaultID != "" {
		if r, ok := results.List[results.DefaultID]; ok {
			r.ID = results.DefaultID
			return r, nil
		}
		return model.Result{}, fmt.Errorf("%w: default %q is not in the result list", ErrNoDefaultResult, results.DefaultID)
	}
	return model.Result{}, ErrNoDefaultResult
}

func overlap(profile TagProfile, criteria map[string][]string, allowed map[string]struct{}) int {
	score := 0
	for tagID, values := range criteria {
		if allowed != nil {
			if _, ok := allowed[tagID]; !ok {
				continue
			}
		}
		for _, v := range values {
			score += profile.Count(tagID, v)
		}
	}
	return score
}
