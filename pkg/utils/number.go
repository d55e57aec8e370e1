package utils

import "math"

// RoundCents arredonda valores monetários para centavos. Zero negativo vira zero.
func RoundCents(value float64) float64 {
	rounded := math.Round(value*100) / 100
	if rounded == 0 {
		return 0
	}
	return rounded
}
