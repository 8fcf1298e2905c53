package reports

import (
	"github.com/shopspring/decimal"

	"rendiconto/internal/core"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

var hundred = decimal.NewFromInt(100)

// Growth is a year-over-year change. Percent is the raw figure; Direction and
// Favorable are presentation hints only.
type Growth struct {
	Percent   decimal.Decimal `json:"percent"`
	Direction Direction       `json:"direction"`
	Favorable bool            `json:"favorable"`
}

// ShiftPeriodOneYear moves both ends of p back one calendar year keeping
// month and day. Feb 29 becomes Feb 28.
func ShiftPeriodOneYear(p core.Period) core.Period {
	return core.Period{Start: shiftYear(p.Start), End: shiftYear(p.End)}
}

func shiftYear(d core.Date) core.Date {
	if d.IsZero() {
		return d
	}
	day := d.Day()
	if d.Month() == 2 && day == 29 {
		day = 28
	}
	return core.NewDate(d.Year()-1, d.Month(), day)
}

// GrowthPercent returns (current - baseline) / |baseline| * 100 rounded to two
// places, or zero when baseline is zero.
func GrowthPercent(current, baseline core.Money) decimal.Decimal {
	if baseline.IsZero() {
		return decimal.Zero
	}
	diff := current.Decimal().Sub(baseline.Decimal())
	return diff.Mul(hundred).Div(baseline.Decimal().Abs()).Round(2)
}

// percentOf returns num / den * 100 rounded half away from zero to two places.
// den must not be zero.
func percentOf(num, den core.Money) decimal.Decimal {
	return num.Decimal().Mul(hundred).Div(den.Decimal()).Round(2)
}

// NewGrowth computes the growth of current over baseline. For expenses a
// decrease is the favorable direction.
func NewGrowth(current, baseline core.Money, lowerIsBetter bool) Growth {
	pct := GrowthPercent(current, baseline)
	g := Growth{Percent: pct, Direction: Flat}
	switch pct.Sign() {
	case 1:
		g.Direction = Up
		g.Favorable = !lowerIsBetter
	case -1:
		g.Direction = Down
		g.Favorable = lowerIsBetter
	}
	return g
}
