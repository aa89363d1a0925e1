package fuel

import (
	"fmt"
	"math"
	"strings"
)

// SavingsPerKg is the CO2 saving, in kilograms of CO2, per kilogram of fuel.
// Derive divides by 1000 so the metric is reported in tonnes.
const SavingsPerKg = 0.926

type UnitKind int

const (
	UnitMass UnitKind = iota + 1
	UnitVolume
)

var unitCodes = map[string]UnitKind{
	"kg":    UnitMass,
	"l":     UnitVolume,
	"lt":    UnitVolume,
	"litre": UnitVolume,
	"liter": UnitVolume,
}

// UnitSpec describes the native unit of the detected field. Density, in kg per
// litre, is only consulted for volumetric units.
type UnitSpec struct {
	Code    string
	Density float64
}

// Kind validates the spec and reports whether it is a mass or volume unit.
func (u UnitSpec) Kind() (UnitKind, error) {
	kind, ok := unitCodes[strings.ToLower(strings.TrimSpace(u.Code))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidUnit, u.Code)
	}
	if kind == UnitVolume && (u.Density <= 0 || math.IsNaN(u.Density) || math.IsInf(u.Density, 0)) {
		return 0, fmt.Errorf("%w: unit %q needs a positive density, got %v", ErrInvalidUnit, u.Code, u.Density)
	}
	return kind, nil
}

// Validate reports ErrInvalidUnit for an unusable spec.
func (u UnitSpec) Validate() error {
	_, err := u.Kind()
	return err
}

// ToKilograms converts a total expressed in the spec's unit into kilograms.
func (u UnitSpec) ToKilograms(total float64) (float64, error) {
	kind, err := u.Kind()
	if err != nil {
		return 0, err
	}
	if kind == UnitVolume {
		return total * u.Density, nil
	}
	return total, nil
}

// Derive turns a fuel mass in kilograms into tonnes of CO2 saved.
func Derive(massKg float64) float64 {
	return (massKg * SavingsPerKg) / 1000
}
