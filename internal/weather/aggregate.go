package weather

import "math"

// Summarize combines the observations for one applicable date into a DaySummary.
// Numeric fields are averaged over the observations that report them; the
// weather state is selected by majority (first seen wins a tie).
func Summarize(date string, observations []Observation) DaySummary {
	summary := DaySummary{
		Date:         date,
		Observations: len(observations),
	}
	if len(observations) == 0 {
		return summary
	}

	var (
		temp     mean
		wind     mean
		pressure mean
		humidity mean
		vis      mean
	)

	minTemp := math.Inf(1)
	maxTemp := math.Inf(-1)

	stateCounts := make(map[string]int)
	var stateOrder []string

	for _, o := range observations {
		temp.add(o.TheTemp)
		wind.add(o.WindSpeed)
		pressure.add(o.AirPressure)
		humidity.add(o.Humidity)
		vis.add(o.Visibility)

		if o.MinTemp != nil && *o.MinTemp < minTemp {
			minTemp = *o.MinTemp
		}
		if o.MaxTemp != nil && *o.MaxTemp > maxTemp {
			maxTemp = *o.MaxTemp
		}

		if o.WeatherStateName != nil {
			name := *o.WeatherStateName
			if _, seen := stateCounts[name]; !seen {
				stateOrder = append(stateOrder, name)
			}
			stateCounts[name]++
		}
	}

	// Pick majority state.
	bestCount := 0
	for _, name := range stateOrder {
		if stateCounts[name] > bestCount {
			bestCount = stateCounts[name]
			summary.WeatherState = name
		}
	}

	if !math.IsInf(minTemp, 1) {
		summary.MinTemp = minTemp
	}
	if !math.IsInf(maxTemp, -1) {
		summary.MaxTemp = maxTemp
	}

	summary.AvgTemp = temp.value()
	summary.WindSpeed = wind.value()
	summary.AirPressure = pressure.value()
	summary.Humidity = humidity.value()
	summary.Visibility = vis.value()

	return summary
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}
