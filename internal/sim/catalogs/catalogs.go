package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Tasks      TaskCatalog
	Talents    TalentCatalog
	Events     EventCatalog
	Contests   ContestCatalog
	Facilities FacilityCatalog
}

type TaskCatalog struct {
	Defs   []TaskDef
	Digest string
}

type TaskDef struct {
	Name       string      `json:"name"`
	Difficulty float64     `json:"difficulty"`
	Boosts     []TaskBoost `json:"boosts"`
}

type TaskBoost struct {
	Domain string  `json:"domain"`
	Amount float64 `json:"amount"`
}

type TalentCatalog struct {
	ByID   map[string]TalentDef
	IDs    []string // sorted, the acquisition pool
	Digest string
}

type TalentDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type EventCatalog struct {
	ByID   map[string]EventTemplate
	IDs    []string // sorted for deterministic iteration
	Digest string
}

type EventTemplate struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	BaseWeight  float64          `json:"base_weight"`
	Effect      EffectSpec       `json:"effect,omitempty"`
	Options     []OptionTemplate `json:"options,omitempty"`
}

type OptionTemplate struct {
	Label  string     `json:"label"`
	Effect EffectSpec `json:"effect"`
}

// EffectSpec is the committed effect of a silent event or a chosen option.
// All fields are deltas; zero means untouched.
type EffectSpec struct {
	Budget      int     `json:"budget,omitempty"`
	Reputation  int     `json:"reputation,omitempty"`
	PressureAll float64 `json:"pressure_all,omitempty"`
	MentalAll   float64 `json:"mental_all,omitempty"`
	ComfortMod  float64 `json:"comfort_mod,omitempty"`
	PressureMod float64 `json:"pressure_mod,omitempty"`
	// ExpenseMult, when positive, replaces the weekly-upkeep multiplier
	// until another effect sets it again.
	ExpenseMult float64 `json:"expense_mult,omitempty"`
}

type ContestCatalog struct {
	// Chain order within a half-season; Defs[i].Prev names Defs[i-1].
	Defs   []ContestDef
	ByName map[string]ContestDef
	Digest string
}

type ContestDef struct {
	Name             string  `json:"name"`
	WeekInHalf       int     `json:"week_in_half"`
	Prev             string  `json:"prev,omitempty"`
	ValueWeight      float64 `json:"value_weight"`
	Difficulty       float64 `json:"difficulty"`
	QualifyScore     int     `json:"qualify_score"`
	AwardBudget      int     `json:"award_budget"`
	AwardReputation  int     `json:"award_reputation"`
	NationalTeamBar  int     `json:"national_team_bar,omitempty"`
	SecondHalfOnly   bool    `json:"second_half_only,omitempty"`
	PressureOnEntry  float64 `json:"pressure_on_entry,omitempty"`
}

type FacilityCatalog struct {
	Tracks map[string]FacilityTrack
	Digest string
}

type FacilityTrack struct {
	Name string `json:"name"`
	// Cost[i] is the cost of upgrading from level i to i+1; len(Cost) is the max level.
	Cost []int `json:"cost"`
	// Effect[i] is the multiplier (or bonus) at level i; len(Effect) == len(Cost)+1.
	Effect []float64 `json:"effect"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadTasks(filepath.Join(configDir, "tasks.json"), &c.Tasks); err != nil {
		return nil, err
	}
	if err := loadTalents(filepath.Join(configDir, "talents.json"), &c.Talents); err != nil {
		return nil, err
	}
	if err := loadEvents(filepath.Join(configDir, "events.json"), &c.Events); err != nil {
		return nil, err
	}
	if err := loadContests(filepath.Join(configDir, "contests.json"), &c.Contests); err != nil {
		return nil, err
	}
	if err := loadFacilities(filepath.Join(configDir, "facilities.json"), &c.Facilities); err != nil {
		return nil, err
	}

	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadTasks(path string, out *TaskCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)
	if err := json.Unmarshal(raw, &out.Defs); err != nil {
		return fmt.Errorf("tasks.json: %w", err)
	}
	for _, d := range out.Defs {
		if d.Name == "" {
			return fmt.Errorf("tasks.json: empty name")
		}
	}
	return nil
}

func loadTalents(path string, out *TalentCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []TalentDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("talents.json: %w", err)
	}
	out.ByID = map[string]TalentDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("talents.json: empty id")
		}
		out.ByID[d.ID] = d
	}
	ids := make([]string, 0, len(out.ByID))
	for id := range out.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.IDs = ids
	return nil
}

func loadEvents(path string, out *EventCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			out.ByID = map[string]EventTemplate{}
			out.Digest = sha256Hex(nil)
			return nil
		}
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []EventTemplate
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("events.json: %w", err)
	}
	out.ByID = map[string]EventTemplate{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("events.json: missing id")
		}
		out.ByID[d.ID] = d
	}
	ids := make([]string, 0, len(out.ByID))
	for id := range out.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.IDs = ids
	return nil
}

func loadContests(path string, out *ContestCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)
	if err := json.Unmarshal(raw, &out.Defs); err != nil {
		return fmt.Errorf("contests.json: %w", err)
	}
	out.ByName = map[string]ContestDef{}
	for i, d := range out.Defs {
		if d.Name == "" {
			return fmt.Errorf("contests.json: empty name")
		}
		if i > 0 && d.Prev != out.Defs[i-1].Name {
			return fmt.Errorf("contests.json: %s prev %q breaks the chain", d.Name, d.Prev)
		}
		out.ByName[d.Name] = d
	}
	return nil
}

func loadFacilities(path string, out *FacilityCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var tracks map[string]FacilityTrack
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return fmt.Errorf("facilities.json: %w", err)
	}
	for id, tr := range tracks {
		if len(tr.Effect) != len(tr.Cost)+1 {
			return fmt.Errorf("facilities.json: track %s needs len(effect)==len(cost)+1", id)
		}
	}
	out.Tracks = tracks
	return nil
}
