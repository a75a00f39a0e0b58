package protocol

// Records emitted at the engine boundary for display/persistence. The engine
// never renders anything itself; it hands these to whatever sink is attached.

// EventRecord is one discrete narrative event. Choice-bearing events carry
// Options and stay pending until exactly one option is committed.
type EventRecord struct {
	ID          string         `json:"id"`
	Week        int            `json:"week"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Options     []OptionRecord `json:"options,omitempty"`
	Handled     bool           `json:"handled"`
}

type OptionRecord struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

func (e EventRecord) ChoiceBearing() bool { return len(e.Options) > 0 }

// WeekLogEntry is one week's worth of engine output, written as a JSONL line
// by the persistence layer and streamed to observers.
type WeekLogEntry struct {
	Week   int           `json:"week"`
	Lines  []string      `json:"lines,omitempty"`
	Events []EventRecord `json:"events,omitempty"`
	Digest string        `json:"digest,omitempty"`
}

// ContestRecord is one student's entry in one resolved contest.
type ContestRecord struct {
	Student  string `json:"student"`
	Contest  string `json:"contest"`
	Half     int    `json:"half"`
	Week     int    `json:"week"`
	Score    int    `json:"score"`
	Eligible bool   `json:"eligible"`
	Advanced bool   `json:"advanced"`
}
