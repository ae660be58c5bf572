package tx

import (
	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// Amount is a quantity of a specific asset.
type Amount struct {
	Asset asset.Asset
	Value number.Number
}

// NewAmount returns v of a.
func NewAmount(a asset.Asset, v number.Number) Amount {
	return Amount{Asset: a, Value: v}
}

// Representable reports whether the value is in range for the asset and
// survives conversion to its native representation unchanged.
func (a Amount) Representable() bool {
	return asset.InRange(a.Asset, a.Value) &&
		asset.Amount(a.Asset, a.Value, number.ToNearest).Equal(a.Value)
}

func (a Amount) String() string {
	return a.Value.String() + " " + a.Asset.String()
}
