package season

import (
	"fmt"
	"sort"

	"oicoach.dev/internal/protocol"
	"oicoach.dev/internal/sim/catalogs"
)

// Phase is the season state machine.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseEnding
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseEnding:
		return "ending"
	default:
		return "ended"
	}
}

// Ending reasons, checked in this priority order.
const (
	EndBudgetExhausted = "budget exhausted"
	EndNoStudents      = "no students"
	EndSeasonComplete  = "season complete"
)

// Logger receives one entry per completed week (and a final one at season
// end). The engine never renders anything itself.
type Logger interface {
	WriteWeek(entry protocol.WeekLogEntry) error
}

// gameEvent pairs a display record with the committed effects of its options.
// Target, when set, scopes student-field effects to one trainee.
type gameEvent struct {
	Rec     protocol.EventRecord
	Options []catalogs.OptionTemplate
	Target  string
	Kind    string // "", "quit_risk", "national_team"
}

// Game is the aggregate root: one live season. It is not safe for concurrent
// use; the host serializes all entry points behind one logical turn.
type Game struct {
	cfg  Config
	cats *catalogs.Catalogs
	rng  *rng

	week        int
	budget      int
	reputation  int
	temperature float64
	weather     Weather

	facilities Facilities
	students   []*Student // insertion order = recruitment order

	weeklyTasks []Task
	actionsLeft int
	expenseMult float64

	completed map[string]struct{}                    // half::contest::week
	qualified map[int]map[string]map[string]struct{} // half -> contest -> students
	career    []protocol.ContestRecord

	recent  []*gameEvent // most-recent-first, capacity cfg.RecentBufferCap
	pending map[string]*gameEvent
	seen    map[string]struct{}

	nationalTeamChoicePending bool
	inNationalTeam            bool
	allQuitTriggered          bool

	phase     Phase
	endReason string

	curLines  []string
	curEvents []protocol.EventRecord
	logger    Logger
}

func New(cfg Config, cats *catalogs.Catalogs) (*Game, error) {
	cfg.applyDefaults()
	if cats == nil {
		return nil, fmt.Errorf("nil catalogs")
	}
	g := &Game{
		cfg:         cfg,
		cats:        cats,
		rng:         newRNG(cfg.Seed),
		week:        1,
		budget:      cfg.StartBudget,
		reputation:  cfg.StartReputation,
		facilities:  newFacilities(),
		actionsLeft: cfg.ActionsPerWeek,
		expenseMult: 1.0,
		completed:   map[string]struct{}{},
		qualified:   map[int]map[string]map[string]struct{}{},
		pending:     map[string]*gameEvent{},
		seen:        map[string]struct{}{},
	}
	for _, name := range cfg.StartRoster {
		g.students = append(g.students, g.rollStudent(name))
	}
	g.rollWeather()
	g.rollWeeklyTasks()
	g.logf("season start: %d trainees, budget %d", len(g.students), g.budget)
	return g, nil
}

func (g *Game) SetLogger(l Logger) { g.logger = l }

// rollStudent creates a fresh trainee with seeded starting stats.
func (g *Game) rollStudent(name string) *Student {
	s := &Student{
		Name:      name,
		Active:    true,
		Thinking:  10 + g.rng.Uniform(0, 10),
		Coding:    10 + g.rng.Uniform(0, 10),
		Knowledge: map[Domain]float64{},
		Pressure:  20,
		Mental:    float64(40 + g.rng.Intn(40)),
	}
	for _, d := range Domains {
		s.Knowledge[d] = g.rng.Uniform(0, 5)
	}
	s.Comfort = g.globalComfort()
	return s
}

// guard is the precondition shared by every state-advancing operation:
// rejected outright after the season ended or while a choice-bearing event
// is unresolved.
func (g *Game) guard() error {
	if g.phase != PhaseActive {
		return protocol.Reject(protocol.ErrSeasonOver, "season over (%s)", g.endReason)
	}
	if len(g.pending) > 0 {
		return protocol.Reject(protocol.ErrChoicePending, "%d unresolved event(s)", len(g.pending))
	}
	return nil
}

func (g *Game) findStudent(name string) *Student {
	for _, s := range g.students {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (g *Game) activeStudents() []*Student {
	var out []*Student
	for _, s := range g.students {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// departStudent deactivates a trainee; the record stays for the summary.
func (g *Game) departStudent(s *Student, reason string, reputationCost int) {
	if !s.Active {
		return
	}
	s.Active = false
	s.DepartReason = reason
	s.DepartWeek = g.week
	if reputationCost > 0 {
		g.reputation -= reputationCost
		if g.reputation < 0 {
			g.reputation = 0
		}
	}
	g.logf("%s left the team (%s)", s.Name, reason)
}

// UpgradeFacility raises one track by a level, charging the catalog cost.
func (g *Game) UpgradeFacility(track string) error {
	if err := g.guard(); err != nil {
		return err
	}
	cost, ok := g.facilities.upgradeCost(g.cats, track)
	if !ok {
		if _, known := g.cats.Facilities.Tracks[track]; !known {
			return protocol.Reject(protocol.ErrBadRequest, "unknown facility %q", track)
		}
		return protocol.Reject(protocol.ErrMaxLevel, "%s is already at max level", track)
	}
	if cost > g.budget {
		return protocol.Reject(protocol.ErrBudget, "upgrade costs %d, budget %d", cost, g.budget)
	}
	g.budget -= cost
	g.facilities.Levels[track]++
	g.logf("upgraded %s to level %d (-%d)", track, g.facilities.Levels[track], cost)
	return nil
}

// Recruit adds a trainee mid-season. The fee shrinks as reputation grows.
func (g *Game) Recruit(name string) error {
	if err := g.guard(); err != nil {
		return err
	}
	if name == "" {
		return protocol.Reject(protocol.ErrBadRequest, "empty name")
	}
	if s := g.findStudent(name); s != nil && s.Active {
		return protocol.Reject(protocol.ErrConflict, "%s is already on the roster", name)
	}
	rep := g.reputation
	if rep > 100 {
		rep = 100
	}
	fee := g.cfg.RecruitCost * (200 - rep) / 100
	if fee > g.budget {
		return protocol.Reject(protocol.ErrBudget, "recruiting costs %d, budget %d", fee, g.budget)
	}
	g.budget -= fee
	g.students = append(g.students, g.rollStudent(name))
	g.logf("recruited %s (-%d)", name, fee)
	return nil
}

// --- reporting surface ---

func (g *Game) Week() int               { return g.week }
func (g *Game) Half() int               { return g.half() }
func (g *Game) Budget() int             { return g.budget }
func (g *Game) Reputation() int         { return g.reputation }
func (g *Game) Weather() Weather        { return g.weather }
func (g *Game) Temperature() float64    { return g.temperature }
func (g *Game) Phase() Phase            { return g.phase }
func (g *Game) EndReason() string       { return g.endReason }
func (g *Game) ActionsLeft() int        { return g.actionsLeft }
func (g *Game) FacilityLevel(t string) int { return g.facilities.Level(t) }
func (g *Game) InNationalTeam() bool    { return g.inNationalTeam }

// Students returns the roster in recruitment order (departed included).
func (g *Game) Students() []*Student {
	out := make([]*Student, len(g.students))
	copy(out, g.students)
	return out
}

func (g *Game) ActiveNames() []string {
	var out []string
	for _, s := range g.students {
		if s.Active {
			out = append(out, s.Name)
		}
	}
	return out
}

// CareerCompetitions exposes the append-only contest log.
func (g *Game) CareerCompetitions() []protocol.ContestRecord {
	out := make([]protocol.ContestRecord, len(g.career))
	copy(out, g.career)
	return out
}

// QualifiedFor reports whether a student sits in the qualification set keyed
// by the given contest for a half.
func (g *Game) QualifiedFor(half int, contest, student string) bool {
	byContest, ok := g.qualified[half]
	if !ok {
		return false
	}
	set, ok := byContest[contest]
	if !ok {
		return false
	}
	_, ok = set[student]
	return ok
}

func (g *Game) half() int {
	if g.week > g.cfg.HalfWeeks {
		return 2
	}
	return 1
}

// --- logging ---

func (g *Game) logf(format string, args ...any) {
	g.curLines = append(g.curLines, fmt.Sprintf("week %d: ", g.week)+fmt.Sprintf(format, args...))
}

// flushWeekLog hands the accumulated week output to the sink. Weeks with
// nothing to report write nothing, so a tick that already flushed (a
// season-ending one) does not emit a second, empty entry.
func (g *Game) flushWeekLog() {
	if g.logger == nil || (len(g.curLines) == 0 && len(g.curEvents) == 0) {
		g.curLines = nil
		g.curEvents = nil
		return
	}
	entry := protocol.WeekLogEntry{
		Week:   g.week,
		Lines:  g.curLines,
		Events: g.curEvents,
		Digest: g.Digest(),
	}
	_ = g.logger.WriteWeek(entry)
	g.curLines = nil
	g.curEvents = nil
}

// sortedQualified flattens the qualification sets for snapshots, sorted for
// stable output.
func (g *Game) sortedQualified() map[int]map[string][]string {
	out := map[int]map[string][]string{}
	for half, byContest := range g.qualified {
		m := map[string][]string{}
		for contest, set := range byContest {
			names := make([]string, 0, len(set))
			for n := range set {
				names = append(names, n)
			}
			sort.Strings(names)
			m[contest] = names
		}
		out[half] = m
	}
	return out
}
