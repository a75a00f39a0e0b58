package season

import (
	"math"

	"oicoach.dev/internal/protocol"
)

// AdvanceWeeks moves the clock forward. If a scheduled contest falls strictly
// within the span, the advance stops exactly on the contest week so the
// contest can be presented instead of silently skipped. A choice-bearing
// event appearing mid-advance also stops the clock.
func (g *Game) AdvanceWeeks(n int) error {
	if n <= 0 {
		return protocol.Reject(protocol.ErrBadRequest, "advance of %d weeks", n)
	}
	if err := g.guard(); err != nil {
		return err
	}

	target := g.week + n
	if cw := g.nextContestWeek(g.week, target); cw > 0 {
		target = cw
	}
	for g.week < target && g.phase == PhaseActive {
		g.tickWeek()
		g.flushWeekLog()
		if len(g.pending) > 0 {
			break
		}
	}
	return nil
}

// tickWeek advances exactly one week.
func (g *Game) tickWeek() {
	// Sickness countdown, with a self-heal talent hook.
	for _, s := range g.activeStudents() {
		if s.SickWeeks <= 0 {
			continue
		}
		s.SickWeeks--
		ctx := &TalentContext{Game: g}
		g.triggerTalents(s, TriggerSicknessTick, ctx, func(e *Effect) {
			if e.Action == ActionShortenSickness {
				s.SickWeeks -= int(e.Amount)
			}
		})
		if s.SickWeeks < 0 {
			s.SickWeeks = 0
		}
		if s.SickWeeks == 0 {
			g.logf("%s recovered", s.Name)
		}
	}

	// Comfort recompute and pressure recovery.
	for _, s := range g.activeStudents() {
		comfort := g.personalComfort(s)
		s.Comfort = comfort
		ctx := &TalentContext{Game: g, Recovery: g.cfg.RecoveryRate * comfort / 100}
		g.triggerTalents(s, TriggerWeekRecover, ctx, func(e *Effect) {
			if e.Action == ActionBoostRecovery {
				ctx.Recovery += e.Amount
			}
		})
		s.Pressure -= ctx.Recovery
		s.clampBounds()
	}

	// Weekly maintenance.
	upkeep := int(math.Floor(float64(g.cfg.WeeklyCost) * g.expenseMult))
	g.budget -= upkeep

	g.week++
	g.rollWeather()
	g.rollWeeklyTasks()
	g.actionsLeft = g.cfg.ActionsPerWeek

	g.forcedRetirementCheck()

	// week_end talent hooks, side effects only.
	for _, s := range g.activeStudents() {
		results := g.triggerTalents(s, TriggerWeekEnd, &TalentContext{Game: g}, nil)
		for _, res := range results {
			if res.Effect == nil {
				continue
			}
			switch res.Effect.Action {
			case ActionQuit:
				g.departStudent(s, "quit", 3)
			case ActionQuitForEsports:
				g.departStudent(s, "quit_for_esports", 0)
			}
		}
	}

	g.runEvents()
	g.checkTerminal()
}

// checkTerminal evaluates ending conditions in priority order.
func (g *Game) checkTerminal() {
	if g.phase != PhaseActive {
		return
	}
	switch {
	case g.budget <= 0:
		g.finishSeason(EndBudgetExhausted)
	case len(g.activeStudents()) == 0:
		g.allQuitTriggered = true
		g.finishSeason(EndNoStudents)
	case g.week > g.cfg.SeasonLengthWeeks && !g.nationalTeamChoicePending && !g.inNationalTeam:
		g.finishSeason(EndSeasonComplete)
	}
}

// finishSeason is terminal: no further ticks or actions are accepted.
func (g *Game) finishSeason(reason string) {
	g.phase = PhaseEnding
	g.endReason = reason
	g.logf("season over: %s", reason)
	// Abandoned pending choices cannot be resolved past this point.
	for id := range g.pending {
		delete(g.pending, id)
	}
	g.phase = PhaseEnded
	g.flushWeekLog()
}

// Summary is the immutable end-of-season report for external summarizers.
type Summary struct {
	Reason     string
	Week       int
	Budget     int
	Reputation int
	Score      float64
	Students   []StudentSummary
	Career     []protocol.ContestRecord
}

type StudentSummary struct {
	Name         string
	Active       bool
	Thinking     float64
	Coding       float64
	Talents      []string
	DepartReason string
	DepartWeek   int
}

func (g *Game) Summarize() Summary {
	sum := Summary{
		Reason:     g.endReason,
		Week:       g.week,
		Budget:     g.budget,
		Reputation: g.reputation,
		Score:      g.SeasonScore(),
		Career:     g.CareerCompetitions(),
	}
	for _, s := range g.students {
		sum.Students = append(sum.Students, StudentSummary{
			Name:         s.Name,
			Active:       s.Active,
			Thinking:     s.Thinking,
			Coding:       s.Coding,
			Talents:      append([]string(nil), s.Talents...),
			DepartReason: s.DepartReason,
			DepartWeek:   s.DepartWeek,
		})
	}
	return sum
}
