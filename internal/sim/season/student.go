package season

// Domain is one of the five knowledge areas a task can boost.
type Domain string

const (
	DomainDS     Domain = "ds"
	DomainGraph  Domain = "graph"
	DomainString Domain = "string"
	DomainMath   Domain = "math"
	DomainDP     Domain = "dp"
)

var Domains = []Domain{DomainDS, DomainGraph, DomainString, DomainMath, DomainDP}

// Student is one trainee's mutable record. Departed students stay in the
// roster with Active=false for the end-of-season summary; every weekly
// resolution skips them.
type Student struct {
	Name   string
	Active bool

	Thinking float64
	Coding   float64

	Knowledge map[Domain]float64

	Pressure float64 // clamped [0,100]; >=90 is quit-risk territory
	Mental   float64 // clamped [0,100]
	Comfort  float64 // recomputed each resolution

	SickWeeks         int
	QuitTendencyWeeks int

	// Acquisition order decides talent effect folding order.
	Talents []string

	// One-shot modifiers, consumed and zeroed by the next resolution that
	// reads them.
	PressureModifier float64
	ComfortModifier  float64

	DepartReason string
	DepartWeek   int
}

func (s *Student) AbilityAvg() float64 {
	return (s.Thinking + s.Coding) / 2
}

func (s *Student) HasTalent(id string) bool {
	for _, t := range s.Talents {
		if t == id {
			return true
		}
	}
	return false
}

// KnowledgeIn averages the student's level across domains; a missing domain
// counts as zero.
func (s *Student) KnowledgeIn(domains []Domain) float64 {
	if len(domains) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range domains {
		sum += s.Knowledge[d]
	}
	return sum / float64(len(domains))
}

func (s *Student) clampBounds() {
	s.Pressure = clamp(s.Pressure, 0, 100)
	s.Mental = clamp(s.Mental, 0, 100)
	s.Comfort = clamp(s.Comfort, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
