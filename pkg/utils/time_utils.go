package utils

// GetMonthlyHours returns the number of hours in a month (approximation)
func GetMonthlyHours() float64 {
	return 730.0 // 365 days / 12 months * 24 hours
}
