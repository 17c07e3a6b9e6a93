package aqi

// Tier is the display classification of an AQI reading.
type Tier struct {
	Name  string // background asset name
	Color string // text color, hex
	Label string
}

var (
	Good      = Tier{Name: "good", Color: "#2d3f5b", Label: "Breathe easy"}
	OK        = Tier{Name: "ok", Color: "#2d3f5b", Label: "Mostly fine"}
	Bad       = Tier{Name: "bad", Color: "#28201d", Label: "Unhealthy air"}
	Dangerous = Tier{Name: "dangerous", Color: "#30130b", Label: "Stay inside!"}
)

// thresholds are exclusive upper bounds, ascending. Anything at or above
// the last bound is Dangerous.
var thresholds = []struct {
	below int
	tier  Tier
}{
	{50, Good},
	{100, OK},
	{200, Bad},
}

// Classify maps an AQI value to its tier. Boundary values belong to the
// upper tier; negative values fall into Good.
func Classify(aqi int) Tier {
	for _, t := range thresholds {
		if aqi < t.below {
			return t.tier
		}
	}
	return Dangerous
}

// Tiers returns every tier in ascending severity.
func Tiers() []Tier {
	return []Tier{Good, OK, Bad, Dangerous}
}
