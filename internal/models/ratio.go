package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Ratio is a percentage that may be undefined when its denominator is zero.
// An undefined ratio marshals to JSON null; it never panics or produces
// NaN/Inf.
type Ratio struct {
	value   decimal.Decimal
	defined bool
}

// NewRatio returns num/den expressed as a percentage. A zero denominator
// yields an undefined ratio.
func NewRatio(num, den decimal.Decimal) Ratio {
	if den.IsZero() {
		return Ratio{}
	}
	return Ratio{value: num.Div(den).Mul(hundred), defined: true}
}

// GrowthRatio returns the percentage change from prev to current. Undefined
// when prev is zero or absent.
func GrowthRatio(current, prev decimal.Decimal) Ratio {
	return NewRatio(current.Sub(prev), prev)
}

func UndefinedRatio() Ratio { return Ratio{} }

func (r Ratio) Defined() bool { return r.defined }

func (r Ratio) Value() decimal.Decimal { return r.value }

func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte("null"), nil
	}
	// Rounding happens here, at the presentation boundary.
	return []byte(`"` + r.value.StringFixed(2) + `"`), nil
}

// GobEncode/GobDecode let precomputed reports round-trip through the gob
// cache despite Ratio's unexported fields.
func (r Ratio) GobEncode() ([]byte, error) {
	if !r.defined {
		return []byte{0}, nil
	}
	b, err := r.value.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append([]byte{1}, b...), nil
}

func (r *Ratio) GobDecode(data []byte) error {
	if len(data) == 0 || data[0] == 0 {
		*r = Ratio{}
		return nil
	}
	var v decimal.Decimal
	if err := v.UnmarshalBinary(data[1:]); err != nil {
		return err
	}
	*r = Ratio{value: v, defined: true}
	return nil
}
