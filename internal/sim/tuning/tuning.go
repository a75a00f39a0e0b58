package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	SeasonLengthWeeks int `yaml:"season_length_weeks"`
	HalfWeeks         int `yaml:"half_weeks"`

	StartBudget     int `yaml:"start_budget"`
	StartReputation int `yaml:"start_reputation"`
	WeeklyCost      int `yaml:"weekly_cost"`
	ActionsPerWeek  int `yaml:"actions_per_week"`
	TasksPerWeek    int `yaml:"tasks_per_week"`

	RecoveryRate    float64 `yaml:"recovery_rate"`
	TalentChance    float64 `yaml:"talent_chance"`
	MaxDiscountRate float64 `yaml:"max_discount_rate"`

	Training Training `yaml:"training"`
	Outing   Outing   `yaml:"outing"`
	Events   Events   `yaml:"events"`
}

type Training struct {
	AbilityGainMin  float64 `yaml:"ability_gain_min"`
	AbilityGainMax  float64 `yaml:"ability_gain_max"`
	BasePressure    BaseBy  `yaml:"base_pressure"`
	SicknessPenalty float64 `yaml:"sickness_penalty"`
}

type BaseBy struct {
	Light  float64 `yaml:"light"`
	Medium float64 `yaml:"medium"`
	Heavy  float64 `yaml:"heavy"`
}

type Outing struct {
	BaseCost       int `yaml:"base_cost"`
	PerStudentCost int `yaml:"per_student_cost"`
	InspirationFee int `yaml:"inspiration_fee"`
	MismatchTotal  int `yaml:"mismatch_total"`
}

type Events struct {
	SicknessBaseChance float64 `yaml:"sickness_base_chance"`
	FlavorChance       float64 `yaml:"flavor_chance"`
	RecentBufferCap    int     `yaml:"recent_buffer_cap"`
}

// Defaults mirrors the zero-value fallbacks the engine applies itself.
// Useful when resuming from a snapshot without a tuning file on disk.
func Defaults() Tuning {
	return Tuning{
		SeasonLengthWeeks: 104,
		HalfWeeks:         52,
		StartBudget:       500000,
		StartReputation:   40,
		WeeklyCost:        20000,
		ActionsPerWeek:    2,
		TasksPerWeek:      4,
		RecoveryRate:      20,
		TalentChance:      0.04,
		MaxDiscountRate:   0.5,
		Training: Training{
			AbilityGainMin:  0.6,
			AbilityGainMax:  1.4,
			BasePressure:    BaseBy{Light: 4, Medium: 8, Heavy: 14},
			SicknessPenalty: 0.7,
		},
		Outing: Outing{
			BaseCost:       30000,
			PerStudentCost: 18000,
			InspirationFee: 2000,
			MismatchTotal:  200,
		},
		Events: Events{
			SicknessBaseChance: 0.10,
			FlavorChance:       0.25,
			RecentBufferCap:    24,
		},
	}
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
