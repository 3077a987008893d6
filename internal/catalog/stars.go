package catalog

import (
	"fmt"
	"math"
	"strings"
)

const (
	starFull  = "★"
	starHalf  = "⯪"
	starEmpty = "☆"

	NoRating = "No rating"
)

// Stars rend une note 0..5 en cinq glyphes ; demi-étoile à partir de 0,5.
func Stars(rating float64) string {
	v := clampRating(rating)
	full := int(math.Floor(v))
	half := 0
	if v-float64(full) >= 0.5 {
		half = 1
	}
	return strings.Repeat(starFull, full) +
		strings.Repeat(starHalf, half) +
		strings.Repeat(starEmpty, 5-full-half)
}

// RatingLabel : "(4.5)" ou "No rating" pour une note nulle.
func RatingLabel(rating float64) string {
	v := clampRating(rating)
	if v == 0 {
		return NoRating
	}
	return fmt.Sprintf("(%.1f)", v)
}

func clampRating(r float64) float64 {
	if math.IsNaN(r) {
		return 0
	}
	return math.Max(0, math.Min(5, r))
}
