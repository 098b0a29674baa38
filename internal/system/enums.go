package system

import (
	"fmt"
	"strings"
)

// EmissionType identifies an emitted species.
type EmissionType string

const (
	CO2  EmissionType = "CO2"
	CO2E EmissionType = "CO2E"
	CH4  EmissionType = "CH4"
	N2O  EmissionType = "N2O"
	NOX  EmissionType = "NOX"
	SO2  EmissionType = "SO2"
	PM25 EmissionType = "PM25"
)

var emissionTypes = []EmissionType{CO2, CO2E, CH4, N2O, NOX, SO2, PM25}

// ParseEmissionType parses s case-insensitively. "PM2.5" is accepted for PM25.
func ParseEmissionType(s string) (EmissionType, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	if u == "PM2.5" {
		return PM25, nil
	}
	for _, t := range emissionTypes {
		if string(t) == u {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown emission type %q", s)
}

// EmissionSource separates stack emissions from upstream fuel emissions.
type EmissionSource string

const (
	Combustion    EmissionSource = "combustion"
	Precombustion EmissionSource = "precombustion"
)

// ParseEmissionSource parses s case-insensitively.
func ParseEmissionSource(s string) (EmissionSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Combustion):
		return Combustion, nil
	case string(Precombustion):
		return Precombustion, nil
	}
	return "", fmt.Errorf("unknown emission source %q", s)
}

// ReserveType is the product an operating reserve provides.
type ReserveType string

const (
	Spinning    ReserveType = "SPINNING"
	Flexibility ReserveType = "FLEXIBILITY"
	Regulation  ReserveType = "REGULATION"
)

// ParseReserveType parses s case-insensitively. ReEDS short names (reg,
// flex, spin) are accepted.
func ParseReserveType(s string) (ReserveType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SPINNING", "SPIN":
		return Spinning, nil
	case "FLEXIBILITY", "FLEX":
		return Flexibility, nil
	case "REGULATION", "REG":
		return Regulation, nil
	}
	return "", fmt.Errorf("unknown reserve type %q", s)
}

// ReserveDirection is the direction a reserve moves output.
type ReserveDirection string

const (
	Up   ReserveDirection = "UP"
	Down ReserveDirection = "DOWN"
)

// ParseReserveDirection parses s case-insensitively. Empty means Up.
func ParseReserveDirection(s string) (ReserveDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "UP":
		return Up, nil
	case "DOWN":
		return Down, nil
	}
	return "", fmt.Errorf("unknown reserve direction %q", s)
}
