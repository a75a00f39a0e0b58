package season

// Task is one offered weekly training task.
type Task struct {
	Name       string
	Difficulty float64
	Boosts     []TaskBoost
}

type TaskBoost struct {
	Domain Domain
	Amount float64
}

// Tier maps raw difficulty to the display tier label.
func (t Task) Tier() string {
	switch {
	case t.Difficulty < 30:
		return "入门"
	case t.Difficulty < 60:
		return "提高"
	case t.Difficulty < 90:
		return "省选"
	default:
		return "NOI"
	}
}

// rollWeeklyTasks regenerates the week's task slate from the catalog, with a
// difficulty jitter so repeated templates still differ week to week.
func (g *Game) rollWeeklyTasks() {
	defs := g.cats.Tasks.Defs
	n := g.cfg.TasksPerWeek
	g.weeklyTasks = g.weeklyTasks[:0]
	if len(defs) == 0 {
		return
	}
	for i := 0; i < n; i++ {
		d := defs[g.rng.Intn(len(defs))]
		task := Task{
			Name:       d.Name,
			Difficulty: d.Difficulty + g.rng.Uniform(-5, 5),
		}
		if task.Difficulty < 1 {
			task.Difficulty = 1
		}
		for _, b := range d.Boosts {
			task.Boosts = append(task.Boosts, TaskBoost{Domain: Domain(b.Domain), Amount: b.Amount})
		}
		g.weeklyTasks = append(g.weeklyTasks, task)
	}
}

// WeeklyTasks returns a copy of the current week's offered tasks.
func (g *Game) WeeklyTasks() []Task {
	out := make([]Task, len(g.weeklyTasks))
	copy(out, g.weeklyTasks)
	return out
}
