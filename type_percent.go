package perfledger

import (
	"fmt"
	"math"
)

// Percent is a return rate in percent: 5 means +5%.
type Percent float64

// AsPercent converts a ratio (0.05) into a Percent (5%).
func AsPercent(ratio float64) Percent { return Percent(100 * ratio) }

func (p Percent) String() string { return p.format("%.2f%%") }

// SignedString shows the sign of any rate that rounds to something else than
// zero.
func (p Percent) SignedString() string {
	s := p.format("%+.2f%%")
	if s == "+0.00%" || s == "-0.00%" {
		return "0.00%"
	}
	return s
}

// format prints p with verb, or "n/a" when p is not a number.
func (p Percent) format(verb string) string {
	if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
		return "n/a"
	}
	return fmt.Sprintf(verb, float64(p))
}
