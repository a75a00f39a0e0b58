package season

import "math"

type Weather string

const (
	WeatherClear Weather = "CLEAR"
	WeatherRain  Weather = "RAIN"
	WeatherHeat  Weather = "HEAT"
	WeatherCold  Weather = "COLD"
	WeatherStorm Weather = "STORM"
)

// pressureFactor scales weekly training pressure by weather.
func (w Weather) pressureFactor() float64 {
	switch w {
	case WeatherRain:
		return 1.05
	case WeatherHeat, WeatherCold:
		return 1.15
	case WeatherStorm:
		return 1.25
	default:
		return 1.0
	}
}

const idealTemperature = 22.0

// rollWeather derives the week's temperature and weather. The school year
// starts in September, so the cold trough lands around week 20.
func (g *Game) rollWeather() {
	phase := 2 * math.Pi * float64((g.week-1)%52) / 52
	base := 18 - 14*math.Cos(phase-2*math.Pi*20/52)
	g.temperature = math.Round((base+g.rng.Uniform(-4, 4))*10) / 10

	roll := g.rng.Float64()
	switch {
	case g.temperature >= 33:
		g.weather = WeatherHeat
	case g.temperature <= 2:
		g.weather = WeatherCold
	case roll < 0.08:
		g.weather = WeatherStorm
	case roll < 0.30:
		g.weather = WeatherRain
	default:
		g.weather = WeatherClear
	}
}

// globalComfort derives campus-wide comfort from temperature and facilities.
// The AC track shrinks the temperature deviation; the dorm track adds a flat
// bonus.
func (g *Game) globalComfort() float64 {
	dev := math.Abs(g.temperature - idealTemperature)
	dev *= 1 - g.facilities.effect(g.cats, FacilityAC)
	comfort := 70 - dev*2.0 + g.facilities.effect(g.cats, FacilityDorm)
	if g.weather == WeatherStorm {
		comfort -= 8
	}
	return clamp(comfort, 0, 100)
}

// personalComfort applies talent sensitivity and the one-shot comfort
// modifier on top of global comfort, consuming the modifier.
func (g *Game) personalComfort(s *Student) float64 {
	ctx := &TalentContext{Game: g, Comfort: g.globalComfort()}
	g.triggerTalents(s, TriggerComfortCalc, ctx, func(e *Effect) {
		if e.Action == ActionAdjustComfort {
			ctx.Comfort += e.Amount
		}
	})
	if s.ComfortModifier != 0 {
		ctx.Comfort += s.ComfortModifier
		s.ComfortModifier = 0
	}
	return clamp(ctx.Comfort, 0, 100)
}
