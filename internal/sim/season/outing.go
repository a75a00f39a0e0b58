package season

import (
	"math"

	"oicoach.dev/internal/protocol"
)

// OutingRequest describes an off-campus (or overseas) training camp.
type OutingRequest struct {
	Students   []string
	Difficulty float64
	Overseas   bool
}

type OutingResult struct {
	Cost     int
	Outcomes []OutingOutcome
}

type OutingOutcome struct {
	Student       string
	HiddenScore   int // 0..400 over four synthetic problems
	Mismatch      bool
	Knowledge     map[Domain]float64
	Thinking      float64
	Coding        float64
	PressureDelta float64
}

// EstimateOutingCost is the pure cost model: base by difficulty and region
// type, a per-participant charge, a reputation discount capped at 50%, and
// talent-driven reductions (clamped at zero). The overseas variant multiplies
// the base by 1.5 and charges a per-talent inspiration fee.
func (g *Game) EstimateOutingCost(req OutingRequest) (int, error) {
	var picked []*Student
	for _, n := range req.Students {
		s := g.findStudent(n)
		if s == nil || !s.Active {
			return 0, protocol.Reject(protocol.ErrNoStudent, "%s is not on the active roster", n)
		}
		picked = append(picked, s)
	}
	if len(picked) == 0 {
		return 0, protocol.Reject(protocol.ErrNoStudent, "no students selected")
	}

	base := float64(g.cfg.OutingBaseCost)
	discountMult := 1.0
	if req.Overseas {
		base *= 1.5
		discountMult = 0.8
	}
	cost := base + float64(g.cfg.OutingPerStudentCost*len(picked)) + req.Difficulty*300

	rep := float64(g.reputation)
	if rep > 100 {
		rep = 100
	}
	discount := math.Min(0.50, rep/100*g.cfg.MaxDiscountRate*discountMult)
	cost = math.Floor(cost * (1 - discount))

	if req.Overseas {
		talents := 0
		for _, s := range picked {
			talents += len(s.Talents)
		}
		cost += float64(g.cfg.OutingInspirationFee * talents)
	}

	trig := TriggerOutingCost
	if req.Overseas {
		trig = TriggerOverseasCost
	}
	ctx := &TalentContext{Game: g, Cost: cost, Participants: len(picked)}
	for _, s := range picked {
		g.triggerTalents(s, trig, ctx, func(e *Effect) {
			switch e.Action {
			case ActionReduceOutingCost, ActionReduceOverseasCost:
				ctx.Cost -= e.Amount
			}
		})
	}
	if ctx.Cost < 0 {
		ctx.Cost = 0
	}
	return int(math.Floor(ctx.Cost)), nil
}

// Outing runs the camp. Budget is checked before any deduction; an
// insufficient budget aborts with no state change.
func (g *Game) Outing(req OutingRequest) (*OutingResult, error) {
	if err := g.guard(); err != nil {
		return nil, err
	}
	cost, err := g.EstimateOutingCost(req)
	if err != nil {
		return nil, err
	}
	if cost > g.budget {
		return nil, protocol.Reject(protocol.ErrBudget, "camp costs %d, budget %d", cost, g.budget)
	}
	if g.actionsLeft <= 0 {
		return nil, protocol.Reject(protocol.ErrNoActions, "no actions left this week")
	}
	g.actionsLeft--
	g.budget -= cost

	res := &OutingResult{Cost: cost}
	for _, n := range req.Students {
		s := g.findStudent(n)
		res.Outcomes = append(res.Outcomes, g.resolveOuting(s, req))
	}
	kind := "outing camp"
	if req.Overseas {
		kind = "overseas camp"
	}
	g.logf("%s: %d trainees, cost %d", kind, len(req.Students), cost)

	g.runEvents()
	return res, nil
}

func (g *Game) resolveOuting(s *Student, req OutingRequest) OutingOutcome {
	out := OutingOutcome{Student: s.Name, Knowledge: map[Domain]float64{}}

	out.HiddenScore = g.simulateScore(s, req.Difficulty)
	out.Mismatch = out.HiddenScore < g.cfg.OutingMismatchTotal

	// Reward/penalty branch, not a continuous function: a mismatched camp
	// scales knowledge x0.2, ability x0.5 and doubles the pressure gain.
	knowScale, abilityScale, pressureScale := 1.0, 1.0, 1.0
	if out.Mismatch {
		knowScale, abilityScale, pressureScale = 0.2, 0.5, 2.0
	}

	intensity := 1.0
	if req.Overseas {
		intensity = 1.4
	}
	for i := 0; i < 2; i++ {
		d := Domains[g.rng.Intn(len(Domains))]
		gain := math.Floor((4 + req.Difficulty/25) * intensity * knowScale)
		if gain > 0 {
			out.Knowledge[d] += gain
			s.Knowledge[d] += gain
		}
	}
	out.Thinking = g.rng.Uniform(g.cfg.AbilityGainMin, g.cfg.AbilityGainMax) * 1.5 * intensity * abilityScale
	out.Coding = g.rng.Uniform(g.cfg.AbilityGainMin, g.cfg.AbilityGainMax) * 1.5 * intensity * abilityScale
	s.Thinking += out.Thinking
	s.Coding += out.Coding

	pd := 12.0 * intensity * pressureScale
	pd = g.foldPressureDelta(s, pd)
	if s.PressureModifier != 0 {
		pd += s.PressureModifier
		s.PressureModifier = 0
	}
	s.Pressure += pd
	s.clampBounds()
	out.PressureDelta = pd

	if out.Mismatch {
		g.logf("%s struggled at the camp (hidden score %d)", s.Name, out.HiddenScore)
	}
	return out
}

// simulateScore runs the hidden four-problem performance model shared by
// camps and contests: per problem, average the student's level across 1-3
// random domains, blend with ability, squash through a sigmoid, scale by a
// mental stability factor, add noise inversely scaled with mental, clamp to
// [0,1] and floor to the nearest 10 points.
func (g *Game) simulateScore(s *Student, difficulty float64) int {
	total := 0
	for p := 0; p < 4; p++ {
		n := 1 + g.rng.Intn(3)
		domains := make([]Domain, 0, n)
		for i := 0; i < n; i++ {
			domains = append(domains, Domains[g.rng.Intn(len(Domains))])
		}
		base := 0.6*s.KnowledgeIn(domains)*3 + 0.4*s.AbilityAvg()

		ratio := sigmoid((base - difficulty) / 18)
		stability := 0.7 + 0.3*s.Mental/100
		noise := g.rng.Norm() * (0.03 + 0.12*(1-s.Mental/100))
		ratio = clamp(ratio*stability+noise, 0, 1)

		score := int(ratio*100) / 10 * 10
		total += score
	}
	return total
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
