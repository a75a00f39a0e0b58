package season

import (
	"testing"
)

func TestPressureFoldAcquisitionOrder(t *testing.T) {
	g := testGame(t, Config{})
	s := mustStudent(t, g, g.ActiveNames()[0])

	// Vacationer only reacts above 8. Acquired after glass heart it sees the
	// doubled value; acquired first it never fires on a small delta.
	s.Talents = []string{TalentGlassHeart, TalentVacationer}
	if got := g.foldPressureDelta(s, 6); got != 1 {
		t.Fatalf("glass heart then vacationer: folded 6 -> %v, want 1", got)
	}

	s.Talents = []string{TalentVacationer, TalentGlassHeart}
	if got := g.foldPressureDelta(s, 6); got != 12 {
		t.Fatalf("vacationer then glass heart: folded 6 -> %v, want 12", got)
	}
}

func TestPressureFoldHalveAndDouble(t *testing.T) {
	g := testGame(t, Config{})
	s := mustStudent(t, g, g.ActiveNames()[0])

	s.Talents = []string{TalentGlassHeart, TalentEasygoing}
	if got := g.foldPressureDelta(s, 10); got != 10 {
		t.Fatalf("double then halve: folded 10 -> %v, want 10", got)
	}
}

func TestPressureFoldIgnoresNegativeDelta(t *testing.T) {
	g := testGame(t, Config{})
	s := mustStudent(t, g, g.ActiveNames()[0])

	s.Talents = []string{TalentGlassHeart}
	if got := g.foldPressureDelta(s, -12); got != -12 {
		t.Fatalf("relief should pass through unchanged, got %v", got)
	}
}

func TestFaultyResolverIsIsolated(t *testing.T) {
	RegisterTalent("FAULTY_FOR_TEST", TriggerPressureChange, func(s *Student, ctx *TalentContext) *Effect {
		panic("resolver bug")
	})

	g := testGame(t, Config{})
	s := mustStudent(t, g, g.ActiveNames()[0])
	s.Talents = []string{"FAULTY_FOR_TEST", TalentEasygoing}

	if got := g.foldPressureDelta(s, 10); got != 5 {
		t.Fatalf("dispatch should survive the panic and still halve: got %v, want 5", got)
	}
}

func TestUnknownTalentIDIsSkipped(t *testing.T) {
	g := testGame(t, Config{})
	s := mustStudent(t, g, g.ActiveNames()[0])
	s.Talents = []string{"NO_SUCH_TALENT", TalentEasygoing}

	if got := g.foldPressureDelta(s, 10); got != 5 {
		t.Fatalf("unknown id should be skipped: got %v, want 5", got)
	}
}

func TestWeatherSensitiveComfort(t *testing.T) {
	g := testGame(t, Config{})
	s := mustStudent(t, g, g.ActiveNames()[0])
	s.Talents = []string{TalentWeatherSensitive}

	base := g.globalComfort()
	got := g.personalComfort(s)
	want := clamp(base+(base-50), 0, 100)
	if got != want {
		t.Fatalf("weather sensitive comfort: got %v, want %v (base %v)", got, want, base)
	}
}

func TestOneShotComfortModifierConsumed(t *testing.T) {
	g := testGame(t, Config{})
	s := mustStudent(t, g, g.ActiveNames()[0])
	base := g.globalComfort()

	s.ComfortModifier = 10
	if got := g.personalComfort(s); got != clamp(base+10, 0, 100) {
		t.Fatalf("first read should apply the modifier: got %v", got)
	}
	if s.ComfortModifier != 0 {
		t.Fatalf("modifier should be consumed, still %v", s.ComfortModifier)
	}
	if got := g.personalComfort(s); got != base {
		t.Fatalf("second read should be back at base: got %v, want %v", got, base)
	}
}
