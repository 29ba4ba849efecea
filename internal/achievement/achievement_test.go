package achievement

import (
	"testing"
)

func TestEvaluateEmptyState(t *testing.T) {
	if due := Evaluate(State{}); len(due) != 0 {
		t.Errorf("empty state should unlock nothing, got %v", due)
	}
}

func TestEvaluateFirstActions(t *testing.T) {
	due := Evaluate(State{HasMealLog: true, HasTrainingSignup: true})
	want := []string{SlugFirstMeal, SlugFirstTraining}
	assertSlugs(t, due, want)
}

func TestEvaluateStreakThresholds(t *testing.T) {
	tests := []struct {
		streak int
		want   []string
	}{
		{4, nil},
		{5, []string{SlugStreak5}},
		{9, []string{SlugStreak5}},
		{10, []string{SlugStreak5, SlugStreak10}},
		{40, []string{SlugStreak5, SlugStreak10}},
	}
	for _, tt := range tests {
		due := Evaluate(State{CurrentStreak: tt.streak})
		assertSlugs(t, due, tt.want)
	}
}

func TestEvaluateFatLossThreshold(t *testing.T) {
	if due := Evaluate(State{TotalFatLossKg: 4.999}); len(due) != 0 {
		t.Errorf("below threshold should not unlock, got %v", due)
	}
	due := Evaluate(State{TotalFatLossKg: 5.0})
	assertSlugs(t, due, []string{SlugFatLoss5Kg})
}

func TestEvaluateSkipsAlreadyUnlocked(t *testing.T) {
	s := State{
		HasMealLog:    true,
		CurrentStreak: 12,
		Unlocked: map[string]bool{
			SlugFirstMeal: true,
			SlugStreak5:   true,
		},
	}
	due := Evaluate(s)
	assertSlugs(t, due, []string{SlugStreak10})

	// A second pass with everything granted is a no-op.
	for _, slug := range due {
		s.Unlocked[slug] = true
	}
	if again := Evaluate(s); len(again) != 0 {
		t.Errorf("re-evaluation should be idempotent, got %v", again)
	}
}

func TestCatalogMatchesSlugs(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Catalog {
		if def.Slug == "" || def.Title == "" {
			t.Errorf("catalog entry %+v missing slug or title", def)
		}
		if seen[def.Slug] {
			t.Errorf("duplicate catalog slug %s", def.Slug)
		}
		seen[def.Slug] = true
	}
	for _, slug := range []string{SlugFirstMeal, SlugFirstTraining, SlugStreak5, SlugStreak10, SlugFatLoss5Kg} {
		if !seen[slug] {
			t.Errorf("slug %s missing from catalog", slug)
		}
	}
}

func assertSlugs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("got %v, want %v", got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			return
		}
	}
}
