// Package units provides shared constants and conversion for length units
// used when reporting volumes.
package units

// Unit constants. Sphere coordinates and spacing are unit-agnostic; the unit
// only labels reports and converts volumes between unit cubes.
const (
	Angstrom   = "angstrom"
	Nanometer  = "nm"
	Micrometer = "um"
	Millimeter = "mm"
	Meter      = "m"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Angstrom, Nanometer, Micrometer, Millimeter, Meter}

// metersPerUnit maps each length unit to its size in meters.
var metersPerUnit = map[string]float64{
	Angstrom:   1e-10,
	Nanometer:  1e-9,
	Micrometer: 1e-6,
	Millimeter: 1e-3,
	Meter:      1,
}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	_, ok := metersPerUnit[unit]
	return ok
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "angstrom, nm, um, mm, m"
}

// ConvertVolume converts a volume expressed in cubes of the from unit to
// cubes of the to unit. Unknown units leave the value unchanged.
func ConvertVolume(volume float64, from, to string) float64 {
	mf, okFrom := metersPerUnit[from]
	mt, okTo := metersPerUnit[to]
	if !okFrom || !okTo || from == to {
		return volume
	}
	scale := mf / mt
	return volume * scale * scale * scale
}
