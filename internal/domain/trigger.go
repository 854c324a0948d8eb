package domain

// EvaluateTrigger reports whether a reading crosses a policy's threshold.
// Comparisons are strict (< or >, never <= / >=): a reading exactly at the
// threshold does not trigger a payout.
func EvaluateTrigger(t TriggerType, threshold int64, r WeatherReading) bool {
	switch t {
	case TriggerRainfallBelow:
		return r.Rainfall < threshold
	case TriggerRainfallAbove:
		return r.Rainfall > threshold
	case TriggerTemperatureBelow:
		return r.Temperature < threshold
	case TriggerTemperatureAbove:
		return r.Temperature > threshold
	case TriggerWindSpeedAbove:
		return r.WindSpeed > threshold
	}
	return false
}

// TriggerValue returns the reading field a trigger type compares against,
// recorded on the claim as the actual observed value.
func TriggerValue(t TriggerType, r WeatherReading) int64 {
	switch t {
	case TriggerRainfallBelow, TriggerRainfallAbove:
		return r.Rainfall
	case TriggerTemperatureBelow, TriggerTemperatureAbove:
		return r.Temperature
	case TriggerWindSpeedAbove:
		return r.WindSpeed
	}
	return 0
}
