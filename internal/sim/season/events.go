package season

import (
	"fmt"

	"github.com/google/uuid"

	"oicoach.dev/internal/protocol"
	"oicoach.dev/internal/sim/catalogs"
)

// newEventID draws a UUID from the seeded generator so event identity is
// reproducible under the same seed.
func (g *Game) newEventID() string {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return fmt.Sprintf("ev-%d-%d", g.week, g.rng.Intn(1<<30))
	}
	return id.String()
}

// pushEvent records an event, deduplicated by (week, name, description, id).
// Choice-bearing events enter the pending set and gate all progression.
func (g *Game) pushEvent(ev *gameEvent) {
	key := fmt.Sprintf("%d|%s|%s|%s", ev.Rec.Week, ev.Rec.Name, ev.Rec.Description, ev.Rec.ID)
	if _, dup := g.seen[key]; dup {
		return
	}
	g.seen[key] = struct{}{}

	g.recent = append([]*gameEvent{ev}, g.recent...)
	g.curEvents = append(g.curEvents, ev.Rec)
	if ev.Rec.ChoiceBearing() {
		g.pending[ev.Rec.ID] = ev
	}
	g.trimRecent()
	g.logf("event: %s: %s", ev.Rec.Name, ev.Rec.Description)
}

// trimRecent enforces the buffer cap by evicting the oldest entries that are
// not awaiting a choice. Unresolved events are exempt: evicting one would
// leave progression gated on an event nobody can see or resolve, and it
// would vanish from snapshots.
func (g *Game) trimRecent() {
	for i := len(g.recent) - 1; i >= 0 && len(g.recent) > g.cfg.RecentBufferCap; i-- {
		if _, unresolved := g.pending[g.recent[i].Rec.ID]; unresolved {
			continue
		}
		g.recent = append(g.recent[:i], g.recent[i+1:]...)
	}
}

func (g *Game) newRecord(name, desc string, options []catalogs.OptionTemplate) protocol.EventRecord {
	rec := protocol.EventRecord{
		ID:          g.newEventID(),
		Week:        g.week,
		Name:        name,
		Description: desc,
	}
	for i, opt := range options {
		rec.Options = append(rec.Options, protocol.OptionRecord{Index: i, Label: opt.Label})
	}
	return rec
}

// runEvents is the weekly stochastic pass: sickness onset, pressure-driven
// quit risk, then one weighted flavor event at most.
func (g *Game) runEvents() {
	g.checkSicknessOnset()
	g.checkQuitRisk()
	g.rollFlavorEvent()
}

func (g *Game) checkSicknessOnset() {
	severity := 0.0
	switch {
	case g.temperature >= 33:
		severity = (g.temperature - 33) / 10
	case g.temperature <= 2:
		severity = (2 - g.temperature) / 10
	}
	if g.weather == WeatherStorm {
		severity += 0.2
	}
	if severity <= 0 {
		return
	}
	acLevel := g.facilities.Level(FacilityAC)
	prob := g.cfg.SicknessBaseChance * (0.5 + severity) * (1 - 0.15*float64(acLevel))
	for _, s := range g.activeStudents() {
		if s.SickWeeks > 0 {
			continue
		}
		if g.rng.Float64() >= prob {
			continue
		}
		s.SickWeeks = 2 + g.rng.Intn(3)
		ev := &gameEvent{Rec: g.newRecord("生病了", fmt.Sprintf("%s 着凉病倒，预计 %d 周恢复", s.Name, s.SickWeeks), nil)}
		g.pushEvent(ev)
	}
}

func (g *Game) checkQuitRisk() {
	for _, s := range g.activeStudents() {
		if s.Pressure < 90 {
			if s.QuitTendencyWeeks > 0 {
				s.QuitTendencyWeeks--
			}
			continue
		}
		s.QuitTendencyWeeks++

		if s.QuitTendencyWeeks >= 3 {
			g.departStudent(s, "pressure", 5)
			g.pushEvent(&gameEvent{Rec: g.newRecord("退役", fmt.Sprintf("%s 在长期高压下选择离开", s.Name), nil)})
			continue
		}
		if s.QuitTendencyWeeks == 1 {
			options := []catalogs.OptionTemplate{
				{Label: "放一周假", Effect: catalogs.EffectSpec{PressureAll: -30, ComfortMod: 10}},
				{Label: "谈心鼓励", Effect: catalogs.EffectSpec{PressureAll: -10, MentalAll: 5}},
				{Label: "顺其自然", Effect: catalogs.EffectSpec{}},
			}
			ev := &gameEvent{
				Rec:     g.newRecord("濒临崩溃", fmt.Sprintf("%s 的压力已经到了临界点", s.Name), options),
				Options: options,
				Target:  s.Name,
				Kind:    "quit_risk",
			}
			g.pushEvent(ev)
		}
	}
}

func (g *Game) rollFlavorEvent() {
	if len(g.cats.Events.IDs) == 0 || g.rng.Float64() >= g.cfg.FlavorChance {
		return
	}
	total := 0.0
	for _, id := range g.cats.Events.IDs {
		w := g.cats.Events.ByID[id].BaseWeight
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return
	}
	pick := g.rng.Float64() * total
	for _, id := range g.cats.Events.IDs {
		tpl := g.cats.Events.ByID[id]
		if tpl.BaseWeight <= 0 {
			continue
		}
		pick -= tpl.BaseWeight
		if pick > 0 {
			continue
		}
		if len(tpl.Options) == 0 {
			// Silent: applied immediately, only logged.
			g.applyEffect(tpl.Effect, "")
			g.pushEvent(&gameEvent{Rec: g.newRecord(tpl.Name, tpl.Description, nil)})
		} else {
			g.pushEvent(&gameEvent{
				Rec:     g.newRecord(tpl.Name, tpl.Description, tpl.Options),
				Options: tpl.Options,
			})
		}
		return
	}
}

// applyEffect commits an effect spec. Student-field deltas hit the named
// target, or every active student when target is empty.
func (g *Game) applyEffect(e catalogs.EffectSpec, target string) {
	g.budget += e.Budget
	g.reputation += e.Reputation
	if g.reputation < 0 {
		g.reputation = 0
	}
	if e.ExpenseMult > 0 {
		g.expenseMult = e.ExpenseMult
	}
	var affected []*Student
	if target != "" {
		if s := g.findStudent(target); s != nil && s.Active {
			affected = []*Student{s}
		}
	} else {
		affected = g.activeStudents()
	}
	for _, s := range affected {
		s.Pressure += e.PressureAll
		s.Mental += e.MentalAll
		s.ComfortModifier += e.ComfortMod
		s.PressureModifier += e.PressureMod
		s.clampBounds()
	}
}

// PendingChoices lists unresolved choice-bearing events, most recent first.
func (g *Game) PendingChoices() []protocol.EventRecord {
	var out []protocol.EventRecord
	for _, ev := range g.recent {
		if _, ok := g.pending[ev.Rec.ID]; ok {
			out = append(out, ev.Rec)
		}
	}
	return out
}

// RecentEvents returns the bounded recent-events buffer, most recent first.
func (g *Game) RecentEvents() []protocol.EventRecord {
	out := make([]protocol.EventRecord, 0, len(g.recent))
	for _, ev := range g.recent {
		out = append(out, ev.Rec)
	}
	return out
}

// ResolveChoice commits exactly one option of a pending event and unblocks
// progression once no pending events remain.
func (g *Game) ResolveChoice(eventID string, option int) error {
	if g.phase != PhaseActive {
		return protocol.Reject(protocol.ErrSeasonOver, "season over (%s)", g.endReason)
	}
	ev, ok := g.pending[eventID]
	if !ok {
		return protocol.Reject(protocol.ErrBadRequest, "no pending event %q", eventID)
	}
	if option < 0 || option >= len(ev.Options) {
		return protocol.Reject(protocol.ErrBadRequest, "event %q has no option %d", eventID, option)
	}

	opt := ev.Options[option]
	g.applyEffect(opt.Effect, ev.Target)
	if ev.Kind == "national_team" {
		g.resolveNationalTeamChoice(option)
	}

	ev.Rec.Handled = true
	delete(g.pending, eventID)
	g.logf("choice: %s -> %s", ev.Rec.Name, opt.Label)

	// Resolving a choice can end the season (e.g. a costly option).
	g.checkTerminal()
	return nil
}
