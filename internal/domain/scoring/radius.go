package scoring

import "math"

// bandWidths are the percentage widths of the ten competence bands, widest
// near the centre.
var bandWidths = [MaxCompetence]int{15, 14, 13, 11, 10, 9, 8, 7, 7, 6}

var radiusFractions = func() [MaxCompetence + 1]float64 {
	var out [MaxCompetence + 1]float64
	acc := 0
	for i, w := range bandWidths {
		acc += w
		out[i+1] = float64(acc) / 100
	}
	return out
}()

// RadiusFractions returns the cumulative radius table, 0 through 1.
func RadiusFractions() [MaxCompetence + 1]float64 { return radiusFractions }

// CompetenceToRadiusFraction maps a possibly fractional competence to a
// radius fraction. NaN maps to 0; values are clamped to [0,10] and
// interpolated linearly between table entries.
func CompetenceToRadiusFraction(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	c = math.Max(MinCompetence, math.Min(MaxCompetence, c))
	lo, hi := math.Floor(c), math.Ceil(c)
	if lo == hi {
		return radiusFractions[int(lo)]
	}
	frac := c - lo
	return radiusFractions[int(lo)] + frac*(radiusFractions[int(hi)]-radiusFractions[int(lo)])
}
