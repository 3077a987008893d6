package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Number accepte un nombre JSON ou une chaîne numérique ("120.50").
// Les services catalogue renvoient les colonnes DECIMAL sous forme de chaîne.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*n = 0
		return nil
	}
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("models: nombre invalide %s: %w", raw, err)
		}
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*n = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("models: nombre invalide %q: %w", raw, err)
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 { return float64(n) }

func (n Number) Int() int { return int(n) }

// NumberPtr facilite la construction des champs optionnels.
func NumberPtr(v float64) *Number {
	n := Number(v)
	return &n
}
