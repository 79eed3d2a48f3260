package carbon

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Energy types accepted on energy activity submissions.
const (
	EnergyElectricity = "electricity"
	EnergyGas         = "gas"
	EnergyDiesel      = "diesel"
	EnergyPetrol      = "petrol"
	EnergyRenewable   = "renewable"
)

// Transport modes accepted on transport activity submissions.
const (
	TransportRoad = "road"
	TransportRail = "rail"
	TransportAir  = "air"
	TransportSea  = "sea"
)

var (
	energyTypes    = mapset.NewSet(EnergyElectricity, EnergyGas, EnergyDiesel, EnergyPetrol, EnergyRenewable)
	transportModes = mapset.NewSet(TransportRoad, TransportRail, TransportAir, TransportSea)
	factorTypes    = mapset.NewSet(FactorTypeEnergy, FactorTypeTransport, FactorTypeMaterial)
)

// NormalizeCategory lower-cases and trims a category or region key.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsEnergyType reports whether s names a supported energy type.
func IsEnergyType(s string) bool { return energyTypes.Contains(NormalizeCategory(s)) }

// IsTransportMode reports whether s names a supported transport mode.
func IsTransportMode(s string) bool { return transportModes.Contains(NormalizeCategory(s)) }

// ParseFactorType validates a factor type string.
func ParseFactorType(s string) (FactorType, error) {
	t := FactorType(NormalizeCategory(s))
	if !factorTypes.Contains(t) {
		return "", InvalidInputf("unknown factor type %q", s)
	}
	return t, nil
}

// EnergyTypes returns the supported energy types in sorted order.
func EnergyTypes() []string { return sortedStrings(energyTypes) }

// TransportModes returns the supported transport modes in sorted order.
func TransportModes() []string { return sortedStrings(transportModes) }

func sortedStrings(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
