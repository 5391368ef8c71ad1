package odds

import "fmt"

// ParlayDecimal multiplies each leg's decimal odds into the combined parlay
// decimal odds. Any zero leg invalidates the whole parlay.
func ParlayDecimal(legs []int) (float64, error) {
	if len(legs) == 0 {
		return 0, fmt.Errorf("parlay needs at least one leg")
	}

	product := 1.0
	for i, leg := range legs {
		d, err := AmericanToDecimal(leg)
		if err != nil {
			return 0, fmt.Errorf("leg %d: %w", i+1, err)
		}
		product *= d
	}

	return product, nil
}

// ParlayAmerican converts combined parlay odds back to American form through
// DecimalToAmerican, so a parlay landing exactly on decimal 2.0 reports +100.
func ParlayAmerican(legs []int) (int, error) {
	d, err := ParlayDecimal(legs)
	if err != nil {
		return 0, err
	}

	return DecimalToAmerican(d)
}
