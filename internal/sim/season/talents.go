package season

// Talent dispatch. A student holds talent *names*; behavior lives in a
// process-wide registry keyed by talent id and trigger. Dispatch walks the
// student's talents in acquisition order, and callers that fold a running
// value apply each effect before the next resolver runs, so later resolvers
// observe the already-modified value. This is order-dependent on purpose:
// conflicting talents (halve vs double) resolve by acquisition order.

type Trigger string

const (
	TriggerPressureChange Trigger = "pressure_change"
	TriggerComfortCalc    Trigger = "comfort_calculate"
	TriggerOutingCost     Trigger = "outing_cost_calculate"
	TriggerOverseasCost   Trigger = "overseas_cost_calculate"
	TriggerWeekRecover    Trigger = "week_recover"
	TriggerSicknessTick   Trigger = "sickness_tick"
	TriggerWeekEnd        Trigger = "week_end"
)

// Action tags a talent effect. Folding sites switch exhaustively; actions
// that make no sense for a given trigger are ignored there.
type Action int

const (
	ActionNone Action = iota
	ActionCancelPressure
	ActionHalvePressure
	ActionDoublePressure
	ActionVacationHalfMinus5
	ActionAdjustComfort
	ActionReduceOutingCost
	ActionReduceOverseasCost
	ActionBoostRecovery
	ActionShortenSickness
	ActionQuit
	ActionQuitForEsports
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionCancelPressure:
		return "cancel_pressure"
	case ActionHalvePressure:
		return "halve_pressure"
	case ActionDoublePressure:
		return "double_pressure"
	case ActionVacationHalfMinus5:
		return "vacation_half_minus5"
	case ActionAdjustComfort:
		return "adjust_comfort"
	case ActionReduceOutingCost:
		return "reduce_outing_cost"
	case ActionReduceOverseasCost:
		return "reduce_overseas_cost"
	case ActionBoostRecovery:
		return "boost_recovery"
	case ActionShortenSickness:
		return "shorten_sickness"
	case ActionQuit:
		return "quit"
	case ActionQuitForEsports:
		return "quit_for_esports"
	}
	return "unknown"
}

type Effect struct {
	Action  Action
	Amount  float64
	Message string
}

// TalentContext carries the running values a resolver may read. Fields are
// only meaningful for the trigger being dispatched.
type TalentContext struct {
	Game *Game

	PressureDelta float64 // pressure_change: running delta
	Comfort       float64 // comfort_calculate: running personal comfort
	Cost          float64 // *_cost_calculate: running cost
	Recovery      float64 // week_recover: running weekly recovery
	Participants  int     // *_cost_calculate
}

type Resolver func(s *Student, ctx *TalentContext) *Effect

type TalentResult struct {
	Talent string
	Effect *Effect // nil when the talent did not react
}

var talentRegistry = map[string]map[Trigger]Resolver{}

// RegisterTalent binds a resolver to a talent id and trigger. Last
// registration wins; call order is init-time only.
func RegisterTalent(id string, trigger Trigger, r Resolver) {
	m, ok := talentRegistry[id]
	if !ok {
		m = map[Trigger]Resolver{}
		talentRegistry[id] = m
	}
	m[trigger] = r
}

// triggerTalents dispatches one trigger across a student's talents in
// acquisition order. When fold is non-nil it is applied immediately after
// each resolver returns, so the next resolver sees the updated context.
// A panic inside one resolver is isolated: it is logged and dispatch
// continues with the remaining talents.
func (g *Game) triggerTalents(s *Student, trig Trigger, ctx *TalentContext, fold func(*Effect)) []TalentResult {
	var out []TalentResult
	for _, id := range s.Talents {
		entries, ok := talentRegistry[id]
		if !ok {
			continue
		}
		r, ok := entries[trig]
		if !ok {
			continue
		}
		eff := g.resolveIsolated(id, trig, r, s, ctx)
		out = append(out, TalentResult{Talent: id, Effect: eff})
		if eff != nil && fold != nil {
			fold(eff)
		}
		if eff != nil && eff.Message != "" {
			g.logf("%s: %s", s.Name, eff.Message)
		}
	}
	return out
}

func (g *Game) resolveIsolated(id string, trig Trigger, r Resolver, s *Student, ctx *TalentContext) (eff *Effect) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logf("talent %s resolver fault on %s: %v", id, trig, rec)
			eff = nil
		}
	}()
	return r(s, ctx)
}

// foldPressureDelta runs the pressure_change trigger over a delta and returns
// the folded value.
func (g *Game) foldPressureDelta(s *Student, delta float64) float64 {
	ctx := &TalentContext{Game: g, PressureDelta: delta}
	g.triggerTalents(s, TriggerPressureChange, ctx, func(e *Effect) {
		switch e.Action {
		case ActionCancelPressure:
			ctx.PressureDelta = 0
		case ActionHalvePressure:
			ctx.PressureDelta /= 2
		case ActionDoublePressure:
			ctx.PressureDelta *= 2
		case ActionVacationHalfMinus5:
			ctx.PressureDelta = ctx.PressureDelta/2 - 5
		}
	})
	return ctx.PressureDelta
}
