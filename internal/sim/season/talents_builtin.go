package season

// Built-in talent roster. Display names and descriptions live in
// configs/talents.json; ids here must match that catalog.

const (
	TalentSteelMind        = "STEEL_MIND"
	TalentEasygoing        = "EASYGOING"
	TalentGlassHeart       = "GLASS_HEART"
	TalentVacationer       = "VACATIONER"
	TalentWeatherSensitive = "WEATHER_SENSITIVE"
	TalentFoodie           = "FOODIE"
	TalentSponsored        = "SPONSORED"
	TalentPolyglot         = "POLYGLOT"
	TalentSelfHealer       = "SELF_HEALER"
	TalentFastRecovery     = "FAST_RECOVERY"
	TalentEsportsDream     = "ESPORTS_DREAM"
	TalentBurnoutProne     = "BURNOUT_PRONE"
)

func init() {
	RegisterTalent(TalentSteelMind, TriggerPressureChange, func(s *Student, ctx *TalentContext) *Effect {
		if ctx.PressureDelta <= 0 {
			return nil
		}
		if ctx.Game.rng.Float64() < 0.30 {
			return &Effect{Action: ActionCancelPressure, Message: "钢铁心态发动，压力烟消云散"}
		}
		return nil
	})

	RegisterTalent(TalentEasygoing, TriggerPressureChange, func(s *Student, ctx *TalentContext) *Effect {
		if ctx.PressureDelta <= 0 {
			return nil
		}
		return &Effect{Action: ActionHalvePressure}
	})

	RegisterTalent(TalentGlassHeart, TriggerPressureChange, func(s *Student, ctx *TalentContext) *Effect {
		if ctx.PressureDelta <= 0 {
			return nil
		}
		return &Effect{Action: ActionDoublePressure}
	})

	RegisterTalent(TalentVacationer, TriggerPressureChange, func(s *Student, ctx *TalentContext) *Effect {
		if ctx.PressureDelta <= 8 {
			return nil
		}
		return &Effect{Action: ActionVacationHalfMinus5, Message: "神游天外，仿佛已在度假"}
	})

	// Comfort sensitivity: deviation from the 50-point baseline is doubled.
	RegisterTalent(TalentWeatherSensitive, TriggerComfortCalc, func(s *Student, ctx *TalentContext) *Effect {
		return &Effect{Action: ActionAdjustComfort, Amount: ctx.Comfort - 50}
	})

	RegisterTalent(TalentFoodie, TriggerComfortCalc, func(s *Student, ctx *TalentContext) *Effect {
		lv := ctx.Game.facilities.Level(FacilityCanteen)
		if lv <= 0 {
			return nil
		}
		return &Effect{Action: ActionAdjustComfort, Amount: float64(2 * lv)}
	})

	RegisterTalent(TalentSponsored, TriggerOutingCost, func(s *Student, ctx *TalentContext) *Effect {
		return &Effect{Action: ActionReduceOutingCost, Amount: 8000}
	})

	RegisterTalent(TalentPolyglot, TriggerOverseasCost, func(s *Student, ctx *TalentContext) *Effect {
		return &Effect{Action: ActionReduceOverseasCost, Amount: 12000}
	})

	RegisterTalent(TalentSelfHealer, TriggerSicknessTick, func(s *Student, ctx *TalentContext) *Effect {
		if s.SickWeeks <= 0 {
			return nil
		}
		if ctx.Game.rng.Float64() < 0.50 {
			return &Effect{Action: ActionShortenSickness, Amount: 1, Message: "自愈体质见效，病程缩短"}
		}
		return nil
	})

	RegisterTalent(TalentFastRecovery, TriggerWeekRecover, func(s *Student, ctx *TalentContext) *Effect {
		return &Effect{Action: ActionBoostRecovery, Amount: 3}
	})

	RegisterTalent(TalentEsportsDream, TriggerWeekEnd, func(s *Student, ctx *TalentContext) *Effect {
		if ctx.Game.rng.Float64() < 0.01 {
			return &Effect{Action: ActionQuitForEsports, Message: "放下键盘去打电竞了"}
		}
		return nil
	})

	RegisterTalent(TalentBurnoutProne, TriggerWeekEnd, func(s *Student, ctx *TalentContext) *Effect {
		if s.Pressure >= 95 {
			return &Effect{Action: ActionQuit, Message: "再也扛不住了"}
		}
		return nil
	})
}
