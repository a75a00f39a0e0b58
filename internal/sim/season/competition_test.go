package season

import (
	"testing"

	"oicoach.dev/internal/protocol"
	"oicoach.dev/internal/sim/catalogs"
)

// unreachableCats raises every qualify bar past the 400-point maximum so no
// entry can ever advance.
func unreachableCats() *catalogs.Catalogs {
	c := testCats()
	for i := range c.Contests.Defs {
		c.Contests.Defs[i].QualifyScore = 401
	}
	c.Contests.ByName = map[string]catalogs.ContestDef{}
	for _, d := range c.Contests.Defs {
		c.Contests.ByName[d.Name] = d
	}
	return c
}

func TestAdvanceStopsOnContestWeek(t *testing.T) {
	g := testGame(t, Config{})
	if err := g.AdvanceWeeks(20); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if g.Week() != 5 {
		t.Fatalf("advance should stop on the scheduled contest week, at %d", g.Week())
	}
	if _, ok := g.ContestAt(g.Week()); !ok {
		t.Fatalf("no contest scheduled at week %d", g.Week())
	}
}

func TestContestNotScheduledRejected(t *testing.T) {
	g := testGame(t, Config{})
	_, err := g.RunContest("初赛")
	if protocol.Code(err) != protocol.ErrConflict {
		t.Fatalf("week 1 entry should be rejected, got %v", err)
	}
	_, err = g.RunContest("不存在的比赛")
	if protocol.Code(err) != protocol.ErrBadRequest {
		t.Fatalf("unknown contest: got %v", err)
	}
}

func TestContestResolvesAtMostOnce(t *testing.T) {
	g := testGame(t, Config{})
	if err := g.AdvanceWeeks(4); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := g.RunContest("初赛"); err != nil {
		t.Fatalf("first entry: %v", err)
	}

	career := len(g.CareerCompetitions())
	digest := g.Digest()
	_, err := g.RunContest("初赛")
	if protocol.Code(err) != protocol.ErrConflict {
		t.Fatalf("second entry should conflict, got %v", err)
	}
	if len(g.CareerCompetitions()) != career {
		t.Fatalf("career log grew on the rejected entry")
	}
	if g.Digest() != digest {
		t.Fatalf("state changed on the rejected entry")
	}
}

func TestUnqualifiedEntriesRecordedIneligible(t *testing.T) {
	g, err := New(Config{Seed: 42}, unreachableCats())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.AdvanceWeeks(4); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := g.RunContest("初赛"); err != nil {
		t.Fatalf("初赛: %v", err)
	}
	if err := g.AdvanceWeeks(3); err != nil {
		t.Fatalf("advance: %v", err)
	}
	rep, err := g.RunContest("复赛")
	if err != nil {
		t.Fatalf("复赛: %v", err)
	}

	if len(rep.Entries) == 0 {
		t.Fatalf("entries should still be recorded")
	}
	for _, e := range rep.Entries {
		if e.Eligible {
			t.Fatalf("%s entered 复赛 without qualifying", e.Student)
		}
		if e.Score != 0 {
			t.Fatalf("ineligible entry carries a score: %+v", e)
		}
	}

	// Only the qualifying contest contributes; its weight here is 1, and the
	// ineligible second-round entries add nothing despite weight 2.
	score := g.SeasonScore()
	var fromFirst float64
	for _, rec := range g.CareerCompetitions() {
		if rec.Contest == "初赛" && rec.Eligible {
			fromFirst += seasonScoreTerm(rec.Score, 1)
		}
	}
	if score != fromFirst {
		t.Fatalf("season score %v should come entirely from 初赛 (%v)", score, fromFirst)
	}
}

func TestQualificationUnlocksNextRound(t *testing.T) {
	c := testCats()
	// A bar of zero lets everyone through.
	for i := range c.Contests.Defs {
		c.Contests.Defs[i].QualifyScore = 0
	}
	c.Contests.ByName = map[string]catalogs.ContestDef{}
	for _, d := range c.Contests.Defs {
		c.Contests.ByName[d.Name] = d
	}
	g, err := New(Config{Seed: 42}, c)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := g.AdvanceWeeks(4); err != nil {
		t.Fatalf("advance: %v", err)
	}
	budget := g.Budget()
	rep1, err := g.RunContest("初赛")
	if err != nil {
		t.Fatalf("初赛: %v", err)
	}
	if len(rep1.Advanced) != len(rep1.Entries) {
		t.Fatalf("a zero bar should advance everyone: %d of %d", len(rep1.Advanced), len(rep1.Entries))
	}
	if g.Budget() != budget+5000*len(rep1.Advanced) {
		t.Fatalf("award budget not applied")
	}
	for _, e := range rep1.Entries {
		if !g.QualifiedFor(1, "初赛", e.Student) {
			t.Fatalf("%s missing from the qualification set", e.Student)
		}
	}

	if err := g.AdvanceWeeks(3); err != nil {
		t.Fatalf("advance: %v", err)
	}
	rep2, err := g.RunContest("复赛")
	if err != nil {
		t.Fatalf("复赛: %v", err)
	}
	for _, e := range rep2.Entries {
		if !e.Eligible {
			t.Fatalf("%s should be eligible after qualifying", e.Student)
		}
	}
}

func TestForcedRetirementInSecondHalf(t *testing.T) {
	g, err := New(Config{Seed: 42, SeasonLengthWeeks: 40, HalfWeeks: 20, StartBudget: 2000000}, unreachableCats())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Skip to the second half and play its first contest; nobody qualifies
	// for the next round, so everybody is out of road.
	for g.Week() < 26 && g.Phase() == PhaseActive {
		resolveAllForTest(t, g)
		if def, ok := g.ContestAt(g.Week()); ok {
			if _, err := g.RunContest(def.Name); err != nil && protocol.Code(err) != protocol.ErrConflict {
				t.Fatalf("contest at week %d: %v", g.Week(), err)
			}
		}
		if err := g.AdvanceWeeks(1); err != nil {
			t.Fatalf("advance at week %d: %v", g.Week(), err)
		}
	}

	if g.Phase() != PhaseEnded {
		t.Fatalf("season should have ended, phase %v at week %d", g.Phase(), g.Week())
	}
	if g.EndReason() != EndNoStudents {
		t.Fatalf("end reason: got %q, want %q", g.EndReason(), EndNoStudents)
	}
	for _, s := range g.Students() {
		if s.Active {
			t.Fatalf("%s still active", s.Name)
		}
		if s.DepartReason != "retired" {
			t.Fatalf("%s departed for %q, want retired", s.Name, s.DepartReason)
		}
	}
}

func resolveAllForTest(t *testing.T, g *Game) {
	t.Helper()
	for _, ev := range g.PendingChoices() {
		if err := g.ResolveChoice(ev.ID, 0); err != nil {
			t.Fatalf("resolve %q: %v", ev.Name, err)
		}
	}
}
