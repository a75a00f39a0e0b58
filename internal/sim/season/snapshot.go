package season

import (
	"fmt"
	"sort"
	"strconv"

	"oicoach.dev/internal/persistence/snapshot"
	"oicoach.dev/internal/protocol"
	"oicoach.dev/internal/sim/catalogs"
)

// Export produces the serializable snapshot of the whole season. The engine
// does not care where the bytes end up.
func (g *Game) Export() snapshot.SeasonV1 {
	snap := snapshot.SeasonV1{
		Header: snapshot.Header{
			Version: 1,
			Week:    g.week,
			Seed:    g.cfg.Seed,
			Reason:  g.endReason,
		},
		Seed:     g.cfg.Seed,
		RngDraws: g.rng.draws,

		SeasonLengthWeeks: g.cfg.SeasonLengthWeeks,
		HalfWeeks:         g.cfg.HalfWeeks,

		Week:        g.week,
		Budget:      g.budget,
		Reputation:  g.reputation,
		Temperature: g.temperature,
		Weather:     string(g.weather),

		ActionsLeft: g.actionsLeft,
		ExpenseMult: g.expenseMult,

		Facilities: map[string]int{},

		NationalTeamChoicePending: g.nationalTeamChoicePending,
		InNationalTeam:            g.inNationalTeam,
		AllQuitTriggered:          g.allQuitTriggered,

		Phase:     g.phase.String(),
		EndReason: g.endReason,
	}
	for track, lv := range g.facilities.Levels {
		snap.Facilities[track] = lv
	}
	for _, s := range g.students {
		snap.Students = append(snap.Students, exportStudent(s))
	}
	for _, t := range g.weeklyTasks {
		snap.WeeklyTasks = append(snap.WeeklyTasks, exportTask(t))
	}
	for key := range g.completed {
		snap.CompletedCompetitions = append(snap.CompletedCompetitions, key)
	}
	sort.Strings(snap.CompletedCompetitions)

	snap.Qualification = map[string]map[string][]string{}
	for half, byContest := range g.sortedQualified() {
		snap.Qualification[strconv.Itoa(half)] = byContest
	}
	for _, rec := range g.career {
		snap.CareerCompetitions = append(snap.CareerCompetitions, snapshot.ContestEntryV1(rec))
	}
	for _, ev := range g.recent {
		snap.RecentEvents = append(snap.RecentEvents, exportEvent(g, ev))
	}
	return snap
}

// Restore rebuilds a game from a snapshot. Roster and week are never
// fabricated: a snapshot missing them is rejected loudly. Budget and
// reputation may default to zero.
func Restore(cfg Config, cats *catalogs.Catalogs, snap snapshot.SeasonV1) (*Game, error) {
	cfg.applyDefaults()
	if snap.Week < 1 {
		return nil, protocol.Reject(protocol.ErrRestoreCorrupt, "snapshot has no week")
	}
	if snap.Students == nil {
		return nil, protocol.Reject(protocol.ErrRestoreCorrupt, "snapshot has no roster")
	}
	if snap.SeasonLengthWeeks > 0 {
		cfg.SeasonLengthWeeks = snap.SeasonLengthWeeks
	}
	if snap.HalfWeeks > 0 {
		cfg.HalfWeeks = snap.HalfWeeks
	}
	cfg.Seed = snap.Seed

	g := &Game{
		cfg:  cfg,
		cats: cats,
		rng:  newRNGAt(snap.Seed, snap.RngDraws),

		week:        snap.Week,
		budget:      snap.Budget,
		reputation:  snap.Reputation,
		temperature: snap.Temperature,
		weather:     Weather(snap.Weather),

		facilities:  newFacilities(),
		actionsLeft: snap.ActionsLeft,
		expenseMult: snap.ExpenseMult,

		completed: map[string]struct{}{},
		qualified: map[int]map[string]map[string]struct{}{},
		pending:   map[string]*gameEvent{},
		seen:      map[string]struct{}{},

		nationalTeamChoicePending: snap.NationalTeamChoicePending,
		inNationalTeam:            snap.InNationalTeam,
		allQuitTriggered:          snap.AllQuitTriggered,

		endReason: snap.EndReason,
	}
	if g.expenseMult <= 0 {
		g.expenseMult = 1.0
	}
	switch snap.Phase {
	case "", "active":
		g.phase = PhaseActive
	case "ending", "ended":
		g.phase = PhaseEnded
	default:
		return nil, protocol.Reject(protocol.ErrRestoreCorrupt, "unknown phase %q", snap.Phase)
	}

	for track, lv := range snap.Facilities {
		g.facilities.Levels[track] = lv
	}
	seen := map[string]struct{}{}
	for _, sv := range snap.Students {
		if sv.Name == "" {
			return nil, protocol.Reject(protocol.ErrRestoreCorrupt, "student with empty name")
		}
		if sv.Active {
			if _, dup := seen[sv.Name]; dup {
				return nil, protocol.Reject(protocol.ErrRestoreCorrupt, "duplicate active student %q", sv.Name)
			}
			seen[sv.Name] = struct{}{}
		}
		g.students = append(g.students, restoreStudent(sv))
	}
	for _, tv := range snap.WeeklyTasks {
		g.weeklyTasks = append(g.weeklyTasks, restoreTask(tv))
	}
	for _, key := range snap.CompletedCompetitions {
		g.completed[key] = struct{}{}
	}
	for halfStr, byContest := range snap.Qualification {
		half, err := strconv.Atoi(halfStr)
		if err != nil {
			return nil, protocol.Reject(protocol.ErrRestoreCorrupt, "bad qualification half %q", halfStr)
		}
		for contest, names := range byContest {
			for _, n := range names {
				g.addQualification(half, contest, n)
			}
		}
	}
	for _, ev := range snap.CareerCompetitions {
		g.career = append(g.career, protocol.ContestRecord(ev))
	}
	for i := len(snap.RecentEvents) - 1; i >= 0; i-- {
		restoreEvent(g, snap.RecentEvents[i])
	}
	return g, nil
}

func exportStudent(s *Student) snapshot.StudentV1 {
	sv := snapshot.StudentV1{
		Name:              s.Name,
		Active:            s.Active,
		Thinking:          s.Thinking,
		Coding:            s.Coding,
		Knowledge:         map[string]float64{},
		Pressure:          s.Pressure,
		Mental:            s.Mental,
		Comfort:           s.Comfort,
		SickWeeks:         s.SickWeeks,
		QuitTendencyWeeks: s.QuitTendencyWeeks,
		Talents:           append([]string{}, s.Talents...),
		PressureModifier:  s.PressureModifier,
		ComfortModifier:   s.ComfortModifier,
		DepartReason:      s.DepartReason,
		DepartWeek:        s.DepartWeek,
	}
	for d, v := range s.Knowledge {
		sv.Knowledge[string(d)] = v
	}
	return sv
}

func restoreStudent(sv snapshot.StudentV1) *Student {
	s := &Student{
		Name:              sv.Name,
		Active:            sv.Active,
		Thinking:          sv.Thinking,
		Coding:            sv.Coding,
		Knowledge:         map[Domain]float64{},
		Pressure:          sv.Pressure,
		Mental:            sv.Mental,
		Comfort:           sv.Comfort,
		SickWeeks:         sv.SickWeeks,
		QuitTendencyWeeks: sv.QuitTendencyWeeks,
		Talents:           append([]string{}, sv.Talents...),
		PressureModifier:  sv.PressureModifier,
		ComfortModifier:   sv.ComfortModifier,
		DepartReason:      sv.DepartReason,
		DepartWeek:        sv.DepartWeek,
	}
	for d, v := range sv.Knowledge {
		s.Knowledge[Domain(d)] = v
	}
	s.clampBounds()
	return s
}

func exportTask(t Task) snapshot.TaskV1 {
	tv := snapshot.TaskV1{Name: t.Name, Difficulty: t.Difficulty}
	for _, b := range t.Boosts {
		tv.Boosts = append(tv.Boosts, snapshot.TaskBoostV1{Domain: string(b.Domain), Amount: b.Amount})
	}
	return tv
}

func restoreTask(tv snapshot.TaskV1) Task {
	t := Task{Name: tv.Name, Difficulty: tv.Difficulty}
	for _, b := range tv.Boosts {
		t.Boosts = append(t.Boosts, TaskBoost{Domain: Domain(b.Domain), Amount: b.Amount})
	}
	return t
}

func exportEvent(g *Game, ev *gameEvent) snapshot.EventV1 {
	_, pending := g.pending[ev.Rec.ID]
	out := snapshot.EventV1{
		ID:          ev.Rec.ID,
		Week:        ev.Rec.Week,
		Name:        ev.Rec.Name,
		Description: ev.Rec.Description,
		Handled:     ev.Rec.Handled,
		Pending:     pending,
		Target:      ev.Target,
		Kind:        ev.Kind,
	}
	for _, opt := range ev.Options {
		out.Options = append(out.Options, snapshot.OptionV1{
			Label:  opt.Label,
			Effect: snapshot.EffectV1(opt.Effect),
		})
	}
	return out
}

// restoreEvent replays one archived event into the buffer (and pending set)
// without re-running its side effects.
func restoreEvent(g *Game, ev snapshot.EventV1) {
	ge := &gameEvent{
		Rec: protocol.EventRecord{
			ID:          ev.ID,
			Week:        ev.Week,
			Name:        ev.Name,
			Description: ev.Description,
			Handled:     ev.Handled,
		},
		Target: ev.Target,
		Kind:   ev.Kind,
	}
	for i, opt := range ev.Options {
		ge.Rec.Options = append(ge.Rec.Options, protocol.OptionRecord{Index: i, Label: opt.Label})
		ge.Options = append(ge.Options, catalogs.OptionTemplate{
			Label:  opt.Label,
			Effect: catalogs.EffectSpec(opt.Effect),
		})
	}
	key := fmt.Sprintf("%d|%s|%s|%s", ev.Week, ev.Name, ev.Description, ev.ID)
	g.seen[key] = struct{}{}
	g.recent = append([]*gameEvent{ge}, g.recent...)
	if ev.Pending {
		g.pending[ev.ID] = ge
	}
	g.trimRecent()
}
