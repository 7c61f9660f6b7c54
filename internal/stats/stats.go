// Package stats derives comparison series from a pair of aligned vote series.
package stats

// Derive computes, for each index of an aligned series pair, the percentage
// change of current over prior and the hour-over-hour increase within current.
//
// deltaPercent[i] is 0 when prior[i] is zero or negative, so a missing prior
// cell reads as "no change" rather than a division blowup. hourlyIncrease[0]
// is always 0: the series opens the observation window, so there is no earlier
// hour inside it to subtract.
func Derive(current, prior []int64) (deltaPercent []float64, hourlyIncrease []int64) {
	n := len(current)
	deltaPercent = make([]float64, n)
	hourlyIncrease = make([]int64, n)

	for i := 0; i < n; i++ {
		if i < len(prior) && prior[i] > 0 {
			deltaPercent[i] = (float64(current[i]) - float64(prior[i])) / float64(prior[i]) * 100
		}
		if i > 0 {
			hourlyIncrease[i] = current[i] - current[i-1]
		}
	}

	return deltaPercent, hourlyIncrease
}
