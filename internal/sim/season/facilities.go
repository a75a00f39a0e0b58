package season

import "oicoach.dev/internal/sim/catalogs"

// Facility track ids, matching configs/facilities.json.
const (
	FacilityComputer = "computer"
	FacilityLibrary  = "library"
	FacilityAC       = "ac"
	FacilityDorm     = "dorm"
	FacilityCanteen  = "canteen"
)

var facilityTracks = []string{FacilityComputer, FacilityLibrary, FacilityAC, FacilityDorm, FacilityCanteen}

// Facilities holds the current level of each upgrade track. Cost and effect
// tables come from the catalog; the library and computer effect tables are
// non-monotonic on purpose (level 1 models a half-finished upgrade and is
// worse than level 2).
type Facilities struct {
	Levels map[string]int
}

func newFacilities() Facilities {
	lv := make(map[string]int, len(facilityTracks))
	for _, t := range facilityTracks {
		lv[t] = 0
	}
	return Facilities{Levels: lv}
}

func (f Facilities) Level(track string) int { return f.Levels[track] }

func (f Facilities) effect(cats *catalogs.Catalogs, track string) float64 {
	tr, ok := cats.Facilities.Tracks[track]
	if !ok {
		return 1.0
	}
	lv := f.Levels[track]
	if lv < 0 || lv >= len(tr.Effect) {
		return 1.0
	}
	return tr.Effect[lv]
}

// upgradeCost returns the cost of the next level, or ok=false at max level.
func (f Facilities) upgradeCost(cats *catalogs.Catalogs, track string) (int, bool) {
	tr, ok := cats.Facilities.Tracks[track]
	if !ok {
		return 0, false
	}
	lv := f.Levels[track]
	if lv >= len(tr.Cost) {
		return 0, false
	}
	return tr.Cost[lv], true
}
