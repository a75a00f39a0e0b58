package season

import (
	"fmt"
	"math"

	"oicoach.dev/internal/protocol"
	"oicoach.dev/internal/sim/catalogs"
)

// ContestReport is the outcome of one resolved contest.
type ContestReport struct {
	Contest  string
	Half     int
	Week     int
	Entries  []protocol.ContestRecord
	Advanced []string
}

// scheduledWeek places a contest on the calendar for a half-season.
func (g *Game) scheduledWeek(def catalogs.ContestDef, half int) int {
	return def.WeekInHalf + (half-1)*g.cfg.HalfWeeks
}

// ContestAt returns the contest scheduled exactly at a week, if any.
func (g *Game) ContestAt(week int) (catalogs.ContestDef, bool) {
	half := 1
	if week > g.cfg.HalfWeeks {
		half = 2
	}
	for _, def := range g.cats.Contests.Defs {
		if g.scheduledWeek(def, half) == week {
			return def, true
		}
	}
	return catalogs.ContestDef{}, false
}

// nextContestWeek finds the first scheduled contest week in (from, to], or 0.
func (g *Game) nextContestWeek(from, to int) int {
	for w := from + 1; w <= to; w++ {
		if _, ok := g.ContestAt(w); ok {
			return w
		}
	}
	return 0
}

// RunContest resolves the named contest at the current week. A contest key
// (half, name, week) resolves at most once.
func (g *Game) RunContest(name string) (*ContestReport, error) {
	if err := g.guard(); err != nil {
		return nil, err
	}
	def, ok := g.cats.Contests.ByName[name]
	if !ok {
		return nil, protocol.Reject(protocol.ErrBadRequest, "unknown contest %q", name)
	}
	half := g.half()
	if g.scheduledWeek(def, half) != g.week {
		return nil, protocol.Reject(protocol.ErrConflict, "%s is not scheduled for week %d", name, g.week)
	}
	key := fmt.Sprintf("%d::%s::%d", half, name, g.week)
	if _, done := g.completed[key]; done {
		return nil, protocol.Reject(protocol.ErrConflict, "%s already resolved this half", name)
	}
	g.completed[key] = struct{}{}

	report := &ContestReport{Contest: name, Half: half, Week: g.week}
	var nationalCandidates []string
	for _, s := range g.activeStudents() {
		eligible := def.Prev == "" || g.QualifiedFor(half, def.Prev, s.Name)
		rec := protocol.ContestRecord{
			Student:  s.Name,
			Contest:  name,
			Half:     half,
			Week:     g.week,
			Eligible: eligible,
		}
		if eligible {
			rec.Score = g.simulateScore(s, def.Difficulty)
			if def.PressureOnEntry > 0 {
				pd := g.foldPressureDelta(s, def.PressureOnEntry)
				s.Pressure += pd
				s.clampBounds()
			}
			if rec.Score >= def.QualifyScore {
				rec.Advanced = true
				g.addQualification(half, name, s.Name)
				report.Advanced = append(report.Advanced, s.Name)
				g.budget += def.AwardBudget
				g.reputation += def.AwardReputation
			}
			if def.NationalTeamBar > 0 && rec.Score >= def.NationalTeamBar {
				nationalCandidates = append(nationalCandidates, s.Name)
			}
		}
		report.Entries = append(report.Entries, rec)
		g.career = append(g.career, rec)
	}

	g.logf("contest %s: %d entries, %d advanced", name, len(report.Entries), len(report.Advanced))
	g.pushEvent(&gameEvent{Rec: g.newRecord(
		name,
		fmt.Sprintf("%d 人参赛，%d 人晋级", len(report.Entries), len(report.Advanced)),
		nil,
	)})

	for _, cand := range nationalCandidates {
		g.offerNationalTeam(cand)
	}
	g.checkTerminal()
	return report, nil
}

func (g *Game) addQualification(half int, contest, student string) {
	byContest, ok := g.qualified[half]
	if !ok {
		byContest = map[string]map[string]struct{}{}
		g.qualified[half] = byContest
	}
	set, ok := byContest[contest]
	if !ok {
		set = map[string]struct{}{}
		byContest[contest] = set
	}
	set[student] = struct{}{}
}

// offerNationalTeam raises the blocking join/decline choice. While it is
// pending (or accepted) the forced-retirement check and the season-complete
// terminal are suppressed.
func (g *Game) offerNationalTeam(student string) {
	if g.nationalTeamChoicePending || g.inNationalTeam {
		return
	}
	g.nationalTeamChoicePending = true
	options := []catalogs.OptionTemplate{
		{Label: "加入国家集训队", Effect: catalogs.EffectSpec{Reputation: 20}},
		{Label: "婉拒，留在队里", Effect: catalogs.EffectSpec{}},
	}
	g.pushEvent(&gameEvent{
		Rec:     g.newRecord("国家队征召", fmt.Sprintf("%s 收到了国家集训队的征召", student), options),
		Options: options,
		Target:  student,
		Kind:    "national_team",
	})
}

func (g *Game) resolveNationalTeamChoice(option int) {
	g.nationalTeamChoicePending = false
	if option == 0 {
		g.inNationalTeam = true
	}
}

// forcedRetirementCheck runs in the second half: an active student with no
// remaining enterable contest is retired without reputation cost. Distinct
// from pressure-driven quitting, and suppressed while a national-team
// process is pending or active.
func (g *Game) forcedRetirementCheck() {
	if g.half() != 2 || g.nationalTeamChoicePending || g.inNationalTeam {
		return
	}
	for _, s := range g.activeStudents() {
		if g.canEnterRemaining(s.Name) {
			continue
		}
		g.departStudent(s, "retired", 0)
		g.pushEvent(&gameEvent{Rec: g.newRecord("光荣退役", fmt.Sprintf("%s 的晋级之路到此为止", s.Name), nil)})
	}
}

// canEnterRemaining reports whether any contest at or after the current week
// in the current half is still open to the student.
func (g *Game) canEnterRemaining(student string) bool {
	half := g.half()
	for _, def := range g.cats.Contests.Defs {
		w := g.scheduledWeek(def, half)
		if w < g.week {
			continue
		}
		key := fmt.Sprintf("%d::%s::%d", half, def.Name, w)
		if _, done := g.completed[key]; done {
			continue
		}
		if def.Prev == "" || g.QualifiedFor(half, def.Prev, student) {
			return true
		}
	}
	return false
}

// SeasonScore folds the career log into the end-of-season performance score:
// log10(max(1, score+10)) x the contest's value weight, ineligible entries
// contributing zero.
func (g *Game) SeasonScore() float64 {
	total := 0.0
	for _, rec := range g.career {
		if !rec.Eligible {
			continue
		}
		def, ok := g.cats.Contests.ByName[rec.Contest]
		if !ok || def.ValueWeight <= 0 {
			continue
		}
		total += math.Log10(math.Max(1, float64(rec.Score+10))) * def.ValueWeight
	}
	return total
}
