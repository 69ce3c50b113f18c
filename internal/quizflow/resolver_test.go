package quizflow

import (
	"errors"
	"testing"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

func TestResolve(t *testing.T) {
	list := model.ResultList{
		"r-ac":    {Title: "AC", Tags: map[string][]string{"t1": {"a", "c"}}},
		"r-z":     {Title: "Z", Tags: map[string][]string{"t1": {"z"}}},
		"r-b":     {Title: "B", Tags: map[string][]string{"t1": {"b"}}},
		"r-color": {Title: "Red", Tags: map[string][]string{"color": {"red"}}},
		"r-def":   {Title: "Default"},
	}

	tests := []struct {
		name     string
		profile  TagProfile
		selected []string
		want     string
	}{
		{
			name:    "single overlap",
			profile: TagProfile{"t1": {"a"}},
			want:    "r-ac",
		},
		{
			name:    "highest count wins",
			profile: TagProfile{"t1": {"a", "b", "b"}},
			want:    "r-b",
		},
		{
			name:    "tie goes to the smallest id",
			profile: TagProfile{"t1": {"a", "b"}},
			want:    "r-ac",
		},
		{
			name:    "no overlap falls back to default",
			profile: TagProfile{"t1": {"q"}},
			want:    "r-def",
		},
		{
			name:    "empty profile falls back to default",
			profile: TagProfile{},
			want:    "r-def",
		},
		{
			name:     "selected tags restrict scoring",
			profile:  TagProfile{"t1": {"a", "a"}, "color": {"red"}},
			selected: []string{"color"},
			want:     "r-color",
		},
		{
			name:     "unset selected slots count every dimension",
			profile:  TagProfile{"t1": {"a"}},
			selected: []string{"", ""},
			want:     "r-ac",
		},
		{
			name:     "one unset slot keeps the other restriction",
			profile:  TagProfile{"t1": {"a", "a"}, "color": {"red"}},
			selected: []string{"", "color"},
			want:     "r-color",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.profile, model.Results{
				SelectedTags: tt.selected,
				List:         list,
				DefaultID:    "r-def",
			})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.ID != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.ID)
			}
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	results := model.Results{
		List: model.ResultList{
			"first":  {Tags: map[string][]string{"t1": {"a", "c"}}},
			"second": {Tags: map[string][]string{"t1": {"z"}}},
		},
	}
	for i := 0; i < 50; i++ {
		got, err := Resolve(TagProfile{"t1": {"a"}}, results)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got.ID != "first" {
			t.Fatalf("Iteration %d: expected first, got %s", i, got.ID)
		}
	}
}

func TestResolveMissingDefault(t *testing.T) {
	tests := []struct {
		name    string
		results model.Results
	}{
		{
			name:    "no default configured",
			results: model.Results{List: model.ResultList{"r1": {Tags: map[string][]string{"t1": {"z"}}}}},
		},
		{
			name: "default not in list",
			results: model.Results{
				List:      model.ResultList{"r1": {Tags: map[string][]string{"t1": {"z"}}}},
				DefaultID: "gone",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(TagProfile{"t1": {"a"}}, tt.results)
			if !errors.Is(err, ErrNoDefaultResult) {
				t.Fatalf("Expected ErrNoDefaultResult, got %v", err)
			}
		})
	}
}
