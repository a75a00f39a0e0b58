package season

type Config struct {
	SeasonLengthWeeks int
	HalfWeeks         int
	Seed              int64

	StartBudget     int
	StartReputation int
	WeeklyCost      int
	RecruitCost     int
	ActionsPerWeek  int
	TasksPerWeek    int

	// StartRoster names the initial trainees. If nil, a generic trio is used;
	// if non-nil but empty, the season starts with an empty roster.
	StartRoster []string

	RecoveryRate    float64
	TalentChance    float64
	MaxDiscountRate float64

	AbilityGainMin float64
	AbilityGainMax float64

	BasePressureLight  float64
	BasePressureMedium float64
	BasePressureHeavy  float64
	SicknessPenalty    float64

	OutingBaseCost       int
	OutingPerStudentCost int
	OutingInspirationFee int
	OutingMismatchTotal  int

	SicknessBaseChance float64
	FlavorChance       float64
	RecentBufferCap    int
}

func (c *Config) applyDefaults() {
	if c.SeasonLengthWeeks <= 0 {
		c.SeasonLengthWeeks = 104
	}
	if c.HalfWeeks <= 0 {
		c.HalfWeeks = c.SeasonLengthWeeks / 2
	}
	if c.StartBudget <= 0 {
		c.StartBudget = 500000
	}
	if c.StartReputation <= 0 {
		c.StartReputation = 40
	}
	if c.WeeklyCost <= 0 {
		c.WeeklyCost = 20000
	}
	if c.RecruitCost <= 0 {
		c.RecruitCost = 30000
	}
	if c.ActionsPerWeek <= 0 {
		c.ActionsPerWeek = 2
	}
	if c.TasksPerWeek <= 0 {
		c.TasksPerWeek = 4
	}
	if c.StartRoster == nil {
		c.StartRoster = []string{"林小羽", "陈默", "王一诺"}
	}
	if c.RecoveryRate <= 0 {
		c.RecoveryRate = 20
	}
	if c.TalentChance <= 0 {
		c.TalentChance = 0.04
	}
	if c.MaxDiscountRate <= 0 || c.MaxDiscountRate > 1 {
		c.MaxDiscountRate = 0.5
	}
	if c.AbilityGainMin <= 0 {
		c.AbilityGainMin = 0.6
	}
	if c.AbilityGainMax <= c.AbilityGainMin {
		c.AbilityGainMax = 1.4
	}
	if c.BasePressureLight <= 0 {
		c.BasePressureLight = 4
	}
	if c.BasePressureMedium <= 0 {
		c.BasePressureMedium = 8
	}
	if c.BasePressureHeavy <= 0 {
		c.BasePressureHeavy = 14
	}
	if c.SicknessPenalty <= 0 || c.SicknessPenalty > 1 {
		c.SicknessPenalty = 0.7
	}
	if c.OutingBaseCost <= 0 {
		c.OutingBaseCost = 30000
	}
	if c.OutingPerStudentCost <= 0 {
		c.OutingPerStudentCost = 18000
	}
	if c.OutingInspirationFee <= 0 {
		c.OutingInspirationFee = 2000
	}
	if c.OutingMismatchTotal <= 0 {
		c.OutingMismatchTotal = 200
	}
	if c.SicknessBaseChance <= 0 {
		c.SicknessBaseChance = 0.10
	}
	if c.FlavorChance <= 0 {
		c.FlavorChance = 0.25
	}
	if c.RecentBufferCap <= 0 {
		c.RecentBufferCap = 24
	}
}
