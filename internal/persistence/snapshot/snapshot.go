package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	Week    int    `json:"week"`
	Seed    int64  `json:"seed"`
	Reason  string `json:"reason,omitempty"`
}

// SeasonV1 is the serialized form of one live (or finished) season. Talent
// sets serialize as ordered name lists; map keys marshal sorted, so the JSON
// encoding is byte-stable and digestable.
type SeasonV1 struct {
	Header Header `json:"header"`

	Seed     int64  `json:"seed"`
	RngDraws uint64 `json:"rng_draws"`

	SeasonLengthWeeks int `json:"season_length_weeks"`
	HalfWeeks         int `json:"half_weeks"`

	Week        int     `json:"week"`
	Budget      int     `json:"budget"`
	Reputation  int     `json:"reputation"`
	Temperature float64 `json:"temperature"`
	Weather     string  `json:"weather"`

	ActionsLeft int     `json:"actions_left"`
	ExpenseMult float64 `json:"expense_mult"`

	Facilities map[string]int `json:"facilities"`
	Students   []StudentV1    `json:"students"`

	WeeklyTasks []TaskV1 `json:"weekly_tasks"`

	CompletedCompetitions []string                     `json:"completed_competitions"`
	Qualification         map[string]map[string][]string `json:"qualification"` // half -> contest -> students
	CareerCompetitions    []ContestEntryV1             `json:"career_competitions"`

	RecentEvents []EventV1 `json:"recent_events"`

	NationalTeamChoicePending bool `json:"national_team_choice_pending"`
	InNationalTeam            bool `json:"in_national_team"`
	AllQuitTriggered          bool `json:"all_quit_triggered"`

	Phase     string `json:"phase"`
	EndReason string `json:"end_reason,omitempty"`
}

type StudentV1 struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`

	Thinking  float64            `json:"thinking"`
	Coding    float64            `json:"coding"`
	Knowledge map[string]float64 `json:"knowledge"`

	Pressure float64 `json:"pressure"`
	Mental   float64 `json:"mental"`
	Comfort  float64 `json:"comfort"`

	SickWeeks         int `json:"sick_weeks"`
	QuitTendencyWeeks int `json:"quit_tendency_weeks"`

	Talents []string `json:"talents"`

	PressureModifier float64 `json:"pressure_modifier,omitempty"`
	ComfortModifier  float64 `json:"comfort_modifier,omitempty"`

	DepartReason string `json:"depart_reason,omitempty"`
	DepartWeek   int    `json:"depart_week,omitempty"`
}

type TaskV1 struct {
	Name       string        `json:"name"`
	Difficulty float64       `json:"difficulty"`
	Boosts     []TaskBoostV1 `json:"boosts"`
}

type TaskBoostV1 struct {
	Domain string  `json:"domain"`
	Amount float64 `json:"amount"`
}

type ContestEntryV1 struct {
	Student  string `json:"student"`
	Contest  string `json:"contest"`
	Half     int    `json:"half"`
	Week     int    `json:"week"`
	Score    int    `json:"score"`
	Eligible bool   `json:"eligible"`
	Advanced bool   `json:"advanced"`
}

type EventV1 struct {
	ID          string     `json:"id"`
	Week        int        `json:"week"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Handled     bool       `json:"handled"`
	Pending     bool       `json:"pending"`
	Target      string     `json:"target,omitempty"`
	Kind        string     `json:"kind,omitempty"`
	Options     []OptionV1 `json:"options,omitempty"`
}

type OptionV1 struct {
	Label  string   `json:"label"`
	Effect EffectV1 `json:"effect"`
}

type EffectV1 struct {
	Budget      int     `json:"budget,omitempty"`
	Reputation  int     `json:"reputation,omitempty"`
	PressureAll float64 `json:"pressure_all,omitempty"`
	MentalAll   float64 `json:"mental_all,omitempty"`
	ComfortMod  float64 `json:"comfort_mod,omitempty"`
	PressureMod float64 `json:"pressure_mod,omitempty"`
	ExpenseMult float64 `json:"expense_mult,omitempty"`
}

// Encode renders the canonical JSON body (no header line, no compression).
func Encode(snap SeasonV1) ([]byte, error) {
	return json.Marshal(&snap)
}

// Write stores a snapshot as a zstd-compressed file: one JSON header line,
// then the JSON body.
func Write(path string, snap SeasonV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 64*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	body, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := bw.Write(body); err != nil {
		return err
	}
	return nil
}

// Read loads and schema-validates a snapshot file. Validation failures are
// loud: a corrupt file never yields a playable state.
func Read(path string) (SeasonV1, error) {
	var snap SeasonV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Header line is advisory; the body repeats it.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("snapshot header: %w", err)
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return snap, err
	}
	if err := Validate(body); err != nil {
		return snap, err
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
