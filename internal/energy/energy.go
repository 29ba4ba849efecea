package energy

// KcalPerKgFat is the fixed energy density used everywhere fat mass is
// converted to or from calories. Historical data was produced with exactly
// 7700, so this value must never change.
const KcalPerKgFat = 7700.0

// DefaultBMR is the assumed daily resting burn for users who have never
// recorded a body analysis.
const DefaultBMR = 2000

// DailyBalance returns the signed energy balance for one day:
// (bmr + activeKcal) - consumedKcal. Positive means a deficit, negative a
// surplus. Missing or invalid inputs are treated as 0.
func DailyBalance(bmr, activeKcal, consumedKcal int) int {
	if bmr < 0 {
		bmr = 0
	}
	if activeKcal < 0 {
		activeKcal = 0
	}
	if consumedKcal < 0 {
		consumedKcal = 0
	}
	return (bmr + activeKcal) - consumedKcal
}

// DailyDeficit returns the day's caloric deficit, clamped at zero. A surplus
// day contributes nothing to accumulated fat loss rather than subtracting
// from it.
func DailyDeficit(bmr, activeKcal, consumedKcal int) int {
	balance := DailyBalance(bmr, activeKcal, consumedKcal)
	if balance < 0 {
		return 0
	}
	return balance
}

// AccumulatedDeficitKg converts a running kcal deficit into kilograms of fat.
func AccumulatedDeficitKg(totalDeficitKcal int) float64 {
	if totalDeficitKcal <= 0 {
		return 0
	}
	return float64(totalDeficitKcal) / KcalPerKgFat
}
