package tuning

import "testing"

func TestLoadShippedTuning(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tune.SeasonLengthWeeks != 104 {
		t.Fatalf("season_length_weeks %d", tune.SeasonLengthWeeks)
	}
	if tune.HalfWeeks != 52 {
		t.Fatalf("half_weeks %d", tune.HalfWeeks)
	}
	if tune.ActionsPerWeek != 2 {
		t.Fatalf("actions_per_week %d", tune.ActionsPerWeek)
	}
	if tune.Training.BasePressure.Heavy <= tune.Training.BasePressure.Light {
		t.Fatalf("base pressure ordering: %+v", tune.Training.BasePressure)
	}
	if tune.MaxDiscountRate <= 0 || tune.MaxDiscountRate > 1 {
		t.Fatalf("max_discount_rate %v", tune.MaxDiscountRate)
	}
}

func TestShippedTuningMatchesDefaults(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tune != Defaults() {
		t.Fatalf("shipped tuning drifted from built-in defaults:\n got %+v\nwant %+v", tune, Defaults())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Fatalf("missing file should error")
	}
}
