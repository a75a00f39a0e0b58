package season

import (
	"testing"
)

// playScripted drives one game through a fixed policy for n weeks: resolve
// every pending choice with its first option, enter the scheduled contest,
// train everyone at medium, advance one week.
func playScripted(t *testing.T, g *Game, n int) {
	t.Helper()
	for i := 0; i < n && g.Phase() == PhaseActive; i++ {
		resolveAllForTest(t, g)
		if g.Phase() != PhaseActive {
			return
		}
		if def, ok := g.ContestAt(g.Week()); ok {
			if _, err := g.RunContest(def.Name); err != nil {
				t.Fatalf("contest %s at week %d: %v", def.Name, g.Week(), err)
			}
			resolveAllForTest(t, g)
		}
		if names := g.ActiveNames(); len(names) > 0 && g.ActionsLeft() > 0 {
			if _, err := g.Train(0, Medium, names); err != nil {
				t.Fatalf("train at week %d: %v", g.Week(), err)
			}
			resolveAllForTest(t, g)
		}
		if g.Phase() != PhaseActive {
			return
		}
		if err := g.AdvanceWeeks(1); err != nil {
			t.Fatalf("advance at week %d: %v", g.Week(), err)
		}
	}
}

func TestSameSeedSameStory(t *testing.T) {
	g1 := testGame(t, Config{Seed: 2024})
	g2 := testGame(t, Config{Seed: 2024})

	if g1.Digest() != g2.Digest() {
		t.Fatalf("fresh games with one seed differ")
	}
	for step := 0; step < 15; step++ {
		playScripted(t, g1, 1)
		playScripted(t, g2, 1)
		if g1.Digest() != g2.Digest() {
			t.Fatalf("digests diverged at step %d", step)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	g1 := testGame(t, Config{Seed: 1})
	g2 := testGame(t, Config{Seed: 2})
	if g1.Digest() == g2.Digest() {
		t.Fatalf("different seeds rolled identical openings")
	}
}

func TestDrawCountTracksEveryDraw(t *testing.T) {
	g1 := testGame(t, Config{Seed: 5})
	playScripted(t, g1, 4)

	// Replaying the recorded draw count must land the generator on the same
	// next value.
	g2 := newRNGAt(5, g1.rng.draws)
	want := g1.rng.uint64()
	if got := g2.uint64(); got != want {
		t.Fatalf("replayed generator out of phase: %d != %d", got, want)
	}
}
