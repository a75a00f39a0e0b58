package season

import (
	"math"
	"testing"

	"oicoach.dev/internal/sim/catalogs"
)

// testCats builds a minimal in-memory catalog set. The flavor event catalog
// is left empty so weekly ticks stay fully predictable under a fixed seed.
func testCats() *catalogs.Catalogs {
	c := &catalogs.Catalogs{}

	c.Tasks.Defs = []catalogs.TaskDef{
		{Name: "入门题单", Difficulty: 20, Boosts: []catalogs.TaskBoost{{Domain: "ds", Amount: 3}}},
		{Name: "压轴题单", Difficulty: 70, Boosts: []catalogs.TaskBoost{{Domain: "dp", Amount: 5}}},
	}

	c.Talents.ByID = map[string]catalogs.TalentDef{}
	for _, id := range []string{
		TalentSteelMind, TalentEasygoing, TalentGlassHeart, TalentVacationer,
		TalentWeatherSensitive, TalentFoodie, TalentSponsored, TalentPolyglot,
		TalentSelfHealer, TalentFastRecovery, TalentEsportsDream, TalentBurnoutProne,
	} {
		c.Talents.ByID[id] = catalogs.TalentDef{ID: id, Name: id}
		c.Talents.IDs = append(c.Talents.IDs, id)
	}

	c.Events.ByID = map[string]catalogs.EventTemplate{}

	c.Contests.Defs = []catalogs.ContestDef{
		{Name: "初赛", WeekInHalf: 5, ValueWeight: 1, Difficulty: 40, QualifyScore: 200, AwardBudget: 5000, AwardReputation: 2, PressureOnEntry: 4},
		{Name: "复赛", WeekInHalf: 8, Prev: "初赛", ValueWeight: 2, Difficulty: 55, QualifyScore: 220, AwardBudget: 10000, AwardReputation: 4, PressureOnEntry: 6},
	}
	c.Contests.ByName = map[string]catalogs.ContestDef{}
	for _, d := range c.Contests.Defs {
		c.Contests.ByName[d.Name] = d
	}

	c.Facilities.Tracks = map[string]catalogs.FacilityTrack{
		FacilityCanteen: {Name: "食堂", Cost: []int{10000}, Effect: []float64{1.0, 0.9}},
		FacilityLibrary: {Name: "资料室", Cost: []int{12000, 24000}, Effect: []float64{1.0, 0.97, 1.2}},
	}

	return c
}

func testGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	g, err := New(cfg, testCats())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

// seasonScoreTerm mirrors the per-entry contribution of the season score.
func seasonScoreTerm(score int, weight float64) float64 {
	return math.Log10(math.Max(1, float64(score+10))) * weight
}

// mustStudent resolves a roster name or fails the test.
func mustStudent(t *testing.T, g *Game, name string) *Student {
	t.Helper()
	s := g.findStudent(name)
	if s == nil {
		t.Fatalf("no student %q", name)
	}
	return s
}
