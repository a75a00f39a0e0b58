package season

import (
	"testing"

	"oicoach.dev/internal/protocol"
)

func TestTrainConsumesWeeklyActions(t *testing.T) {
	g := testGame(t, Config{})
	names := g.ActiveNames()

	if g.ActionsLeft() != 2 {
		t.Fatalf("fresh week should have 2 actions, got %d", g.ActionsLeft())
	}
	if _, err := g.Train(0, Medium, names); err != nil {
		t.Fatalf("first train: %v", err)
	}
	if _, err := g.Train(0, Medium, names); err != nil {
		t.Fatalf("second train: %v", err)
	}
	_, err := g.Train(0, Medium, names)
	if protocol.Code(err) != protocol.ErrNoActions {
		t.Fatalf("third train should exhaust actions, got %v", err)
	}
}

func TestExtraTrainBypassesActionBudget(t *testing.T) {
	g := testGame(t, Config{})
	names := g.ActiveNames()
	for g.ActionsLeft() > 0 {
		if _, err := g.Train(0, Light, names); err != nil {
			t.Fatalf("train: %v", err)
		}
	}
	if _, err := g.ExtraTrain(0, Medium, names); err != nil {
		t.Fatalf("forced training should ignore the action budget: %v", err)
	}
}

func TestTrainValidation(t *testing.T) {
	g := testGame(t, Config{})

	_, err := g.Train(99, Medium, g.ActiveNames())
	if protocol.Code(err) != protocol.ErrNoTask {
		t.Fatalf("bad task index: got %v", err)
	}
	_, err = g.Train(0, Medium, []string{"查无此人"})
	if protocol.Code(err) != protocol.ErrNoStudent {
		t.Fatalf("unknown student: got %v", err)
	}
	_, err = g.Train(0, Medium, nil)
	if protocol.Code(err) != protocol.ErrNoStudent {
		t.Fatalf("empty selection: got %v", err)
	}
	if g.ActionsLeft() != g.cfg.ActionsPerWeek {
		t.Fatalf("rejected trains must not consume actions, left %d", g.ActionsLeft())
	}
}

func TestTrainKeepsBoundsClamped(t *testing.T) {
	g := testGame(t, Config{})
	name := g.ActiveNames()[0]
	s := mustStudent(t, g, name)
	s.Pressure = 99

	// Heavy intensity against the hardest offered task.
	hardest := 0
	for i, task := range g.WeeklyTasks() {
		if task.Difficulty > g.WeeklyTasks()[hardest].Difficulty {
			hardest = i
		}
	}
	if _, err := g.Train(hardest, Heavy, []string{name}); err != nil {
		t.Fatalf("train: %v", err)
	}
	if s.Pressure < 0 || s.Pressure > 100 {
		t.Fatalf("pressure out of bounds: %v", s.Pressure)
	}
	if s.Mental < 0 || s.Mental > 100 {
		t.Fatalf("mental out of bounds: %v", s.Mental)
	}
}

func TestEstimateTrainingIsPure(t *testing.T) {
	g := testGame(t, Config{})
	name := g.ActiveNames()[0]
	s := mustStudent(t, g, name)
	s.PressureModifier = -5

	before := g.rng.draws
	digest := g.Digest()

	est, err := g.EstimateTraining(name, 0, Medium)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.Thinking <= 0 || est.Coding != est.Thinking {
		t.Fatalf("estimate should report the midpoint gain for both abilities: %+v", est)
	}
	if g.rng.draws != before {
		t.Fatalf("estimate consumed %d draws", g.rng.draws-before)
	}
	if s.PressureModifier != -5 {
		t.Fatalf("estimate consumed the one-shot modifier")
	}
	if g.Digest() != digest {
		t.Fatalf("estimate mutated game state")
	}
}

func TestEstimateFlagsQuitRisk(t *testing.T) {
	g := testGame(t, Config{})
	name := g.ActiveNames()[0]
	s := mustStudent(t, g, name)
	s.Pressure = 85
	s.Talents = nil

	// Hardest task at heavy intensity against a stressed low-ability student.
	hardest := 0
	for i, task := range g.WeeklyTasks() {
		if task.Difficulty > g.WeeklyTasks()[hardest].Difficulty {
			hardest = i
		}
	}
	est, err := g.EstimateTraining(name, hardest, Heavy)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if !est.HasQuitRisk {
		t.Fatalf("pressure 85 plus heavy training on difficulty %v should warn (delta %v)",
			g.WeeklyTasks()[hardest].Difficulty, est.PressureDelta)
	}
}

func TestTrainingKnowledgeGainIsFloored(t *testing.T) {
	g := testGame(t, Config{})
	name := g.ActiveNames()[0]
	s := mustStudent(t, g, name)
	before := s.Knowledge[DomainDS]

	g.weeklyTasks[0] = Task{
		Name:       "入门题单",
		Difficulty: 20,
		Boosts:     []TaskBoost{{Domain: DomainDS, Amount: 3}},
	}
	out, err := g.Train(0, Light, []string{name})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	// Light factor 0.7 on a 3-point boost floors to 2.
	if got := out[0].Knowledge[DomainDS]; got != 2 {
		t.Fatalf("light training on a 3-point boost: got %v, want 2", got)
	}
	if s.Knowledge[DomainDS] != before+2 {
		t.Fatalf("student knowledge not applied: %v", s.Knowledge[DomainDS])
	}
}
