package season

import (
	"math"

	"oicoach.dev/internal/protocol"
)

type Intensity int

const (
	Light Intensity = iota
	Medium
	Heavy
)

func (i Intensity) String() string {
	switch i {
	case Light:
		return "light"
	case Heavy:
		return "heavy"
	default:
		return "medium"
	}
}

// Factor scales both training effect and pressure cost.
func (i Intensity) Factor() float64 {
	switch i {
	case Light:
		return 0.7
	case Heavy:
		return 1.3
	default:
		return 1.0
	}
}

func (i Intensity) pressureMult() float64 {
	switch i {
	case Light:
		return 0.8
	case Heavy:
		return 1.4
	default:
		return 1.0
	}
}

func (g *Game) basePressure(i Intensity) float64 {
	switch i {
	case Light:
		return g.cfg.BasePressureLight
	case Heavy:
		return g.cfg.BasePressureHeavy
	default:
		return g.cfg.BasePressureMedium
	}
}

// TrainingOutcome reports one student's resolved (or estimated) week.
type TrainingOutcome struct {
	Student       string
	Knowledge     map[Domain]float64
	Thinking      float64
	Coding        float64
	PressureDelta float64
	Comfort       float64
	HasQuitRisk   bool
}

// abilityBoostMult peaks when task difficulty matches the student's ability
// average and falls off with mismatch in either direction.
func abilityBoostMult(abilityAvg, difficulty float64) float64 {
	mismatch := math.Abs(difficulty - abilityAvg)
	m := 1.2 - mismatch/50
	if m < 0.3 {
		m = 0.3
	}
	return m
}

// Train runs one week of training for the named students against one offered
// task. It consumes one weekly action.
func (g *Game) Train(taskIdx int, in Intensity, names []string) ([]TrainingOutcome, error) {
	return g.train(taskIdx, in, names, false)
}

// ExtraTrain is the forced-training variant: the identical pipeline with a
// fixed 1.5x pressure multiplier, not gated by the weekly action budget.
func (g *Game) ExtraTrain(taskIdx int, in Intensity, names []string) ([]TrainingOutcome, error) {
	return g.train(taskIdx, in, names, true)
}

func (g *Game) train(taskIdx int, in Intensity, names []string, forced bool) ([]TrainingOutcome, error) {
	if err := g.guard(); err != nil {
		return nil, err
	}
	if taskIdx < 0 || taskIdx >= len(g.weeklyTasks) {
		return nil, protocol.Reject(protocol.ErrNoTask, "no such task %d", taskIdx)
	}
	if len(names) == 0 {
		return nil, protocol.Reject(protocol.ErrNoStudent, "no students selected")
	}
	var picked []*Student
	for _, n := range names {
		s := g.findStudent(n)
		if s == nil || !s.Active {
			return nil, protocol.Reject(protocol.ErrNoStudent, "%s is not on the active roster", n)
		}
		picked = append(picked, s)
	}
	if !forced {
		if g.actionsLeft <= 0 {
			return nil, protocol.Reject(protocol.ErrNoActions, "no actions left this week")
		}
		g.actionsLeft--
	}

	task := g.weeklyTasks[taskIdx]
	var out []TrainingOutcome
	for _, s := range picked {
		out = append(out, g.resolveTraining(s, task, in, forced))
	}

	// Chance to pick up a new talent, scaled by intensity.
	for _, s := range picked {
		if !s.Active {
			continue
		}
		g.maybeAcquireTalent(s, in)
	}

	g.runEvents()
	return out, nil
}

// resolveTraining applies the full pipeline to one student and mutates them.
func (g *Game) resolveTraining(s *Student, task Task, in Intensity, forced bool) TrainingOutcome {
	out := TrainingOutcome{Student: s.Name, Knowledge: map[Domain]float64{}}

	comfort := g.personalComfort(s)
	boostMult := abilityBoostMult(s.AbilityAvg(), task.Difficulty)

	sickPenalty := 1.0
	if s.SickWeeks > 0 {
		sickPenalty = g.cfg.SicknessPenalty
	}

	libMult := g.facilities.effect(g.cats, FacilityLibrary)
	for _, b := range task.Boosts {
		gain := math.Floor(b.Amount * libMult * in.Factor() * sickPenalty)
		if gain <= 0 {
			continue
		}
		out.Knowledge[b.Domain] = gain
		s.Knowledge[b.Domain] += gain
	}

	gainBase := boostMult * in.Factor() * (1 - math.Min(0.6, s.Pressure/200))
	compMult := g.facilities.effect(g.cats, FacilityComputer)
	out.Thinking = g.rng.Uniform(g.cfg.AbilityGainMin, g.cfg.AbilityGainMax) * gainBase * compMult
	out.Coding = g.rng.Uniform(g.cfg.AbilityGainMin, g.cfg.AbilityGainMax) * gainBase * compMult
	s.Thinking += out.Thinking
	s.Coding += out.Coding

	pd := g.rawPressureDelta(s, task.Difficulty, in, comfort, forced)
	pd = g.foldPressureDelta(s, pd)
	if s.PressureModifier != 0 {
		pd += s.PressureModifier
		s.PressureModifier = 0
	}
	s.Pressure += pd
	s.Comfort = comfort
	s.clampBounds()

	out.PressureDelta = pd
	out.Comfort = comfort
	out.HasQuitRisk = s.Pressure >= 90
	return out
}

// rawPressureDelta is the pre-talent pressure cost of one training week.
func (g *Game) rawPressureDelta(s *Student, difficulty float64, in Intensity, comfort float64, forced bool) float64 {
	pd := g.basePressure(in) + math.Max(0, (difficulty-s.AbilityAvg())*0.2)
	pd *= in.pressureMult()
	pd *= g.weather.pressureFactor()
	pd *= g.facilities.effect(g.cats, FacilityCanteen)
	pd *= 1 + math.Max(0, (50-comfort)/100)
	if s.SickWeeks > 0 {
		pd += 10
	}
	if forced {
		pd *= 1.5
	}
	return pd
}

// EstimateTraining previews a week without mutating anything: no draws are
// consumed, one-shot modifiers stay armed, and ability gain is reported at
// the midpoint of the random range.
func (g *Game) EstimateTraining(name string, taskIdx int, in Intensity) (TrainingOutcome, error) {
	var out TrainingOutcome
	if taskIdx < 0 || taskIdx >= len(g.weeklyTasks) {
		return out, protocol.Reject(protocol.ErrNoTask, "no such task %d", taskIdx)
	}
	s := g.findStudent(name)
	if s == nil || !s.Active {
		return out, protocol.Reject(protocol.ErrNoStudent, "%s is not on the active roster", name)
	}
	task := g.weeklyTasks[taskIdx]

	out.Student = s.Name
	out.Knowledge = map[Domain]float64{}

	comfort := g.globalComfort() // talent sensitivity and modifiers left alone
	sickPenalty := 1.0
	if s.SickWeeks > 0 {
		sickPenalty = g.cfg.SicknessPenalty
	}
	libMult := g.facilities.effect(g.cats, FacilityLibrary)
	for _, b := range task.Boosts {
		out.Knowledge[b.Domain] = math.Floor(b.Amount * libMult * in.Factor() * sickPenalty)
	}
	gainBase := abilityBoostMult(s.AbilityAvg(), task.Difficulty) * in.Factor() * (1 - math.Min(0.6, s.Pressure/200))
	mid := (g.cfg.AbilityGainMin + g.cfg.AbilityGainMax) / 2
	compMult := g.facilities.effect(g.cats, FacilityComputer)
	out.Thinking = mid * gainBase * compMult
	out.Coding = out.Thinking

	out.PressureDelta = g.rawPressureDelta(s, task.Difficulty, in, comfort, false)
	out.Comfort = comfort
	out.HasQuitRisk = s.Pressure+out.PressureDelta >= 90
	return out, nil
}

func (g *Game) maybeAcquireTalent(s *Student, in Intensity) {
	if g.rng.Float64() >= g.cfg.TalentChance*in.Factor() {
		return
	}
	var pool []string
	for _, id := range g.cats.Talents.IDs {
		if !s.HasTalent(id) {
			pool = append(pool, id)
		}
	}
	if len(pool) == 0 {
		return
	}
	id := pool[g.rng.Intn(len(pool))]
	s.Talents = append(s.Talents, id)
	def := g.cats.Talents.ByID[id]
	g.logf("%s awakened talent %s", s.Name, def.Name)
}
