package model

import (
	"fmt"
	"strings"
)

// PlantType identifies the technology of a power plant. The set of values is
// closed: any other value is rejected by the cost model.
type PlantType int

const (
	PlantGasFired PlantType = iota + 1
	PlantTurbojet
	PlantWindTurbine
)

// String returns the wire name of the plant type.
func (t PlantType) String() string {
	switch t {
	case PlantGasFired:
		return "gasfired"
	case PlantTurbojet:
		return "turbojet"
	case PlantWindTurbine:
		return "windturbine"
	default:
		return fmt.Sprintf("PlantType(%d)", int(t))
	}
}

// ParsePlantType maps a wire name to a PlantType.
func ParsePlantType(s string) (PlantType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gasfired":
		return PlantGasFired, nil
	case "turbojet":
		return PlantTurbojet, nil
	case "windturbine":
		return PlantWindTurbine, nil
	default:
		return 0, &UnknownPlantTypeError{Type: s}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t PlantType) MarshalText() ([]byte, error) {
	switch t {
	case PlantGasFired, PlantTurbojet, PlantWindTurbine:
		return []byte(t.String()), nil
	default:
		return nil, &UnknownPlantTypeError{Type: t.String()}
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PlantType) UnmarshalText(b []byte) error {
	v, err := ParsePlantType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// PowerPlant describes one generation unit of a request.
type PowerPlant struct {
	Name       string    `json:"name" msgpack:"name"`
	Type       PlantType `json:"type" msgpack:"type"`
	Efficiency float64   `json:"efficiency" msgpack:"efficiency"`
	PMin       float64   `json:"pmin" msgpack:"pmin"` // MW, 0 or at least PMin once running
	PMax       float64   `json:"pmax" msgpack:"pmax"` // MW, nameplate
}

// Validate checks the static constraints of a plant.
func (p PowerPlant) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: plant name is required", ErrInvalidInput)
	}
	if !(p.Efficiency > 0 && p.Efficiency <= 1) {
		return fmt.Errorf("%w: plant %s: efficiency must be in (0,1], got %v", ErrInvalidInput, p.Name, p.Efficiency)
	}
	if !(p.PMin >= 0) {
		return fmt.Errorf("%w: plant %s: pmin must be >= 0, got %v", ErrInvalidInput, p.Name, p.PMin)
	}
	if !(p.PMax > 0) {
		return fmt.Errorf("%w: plant %s: pmax must be > 0, got %v", ErrInvalidInput, p.Name, p.PMax)
	}
	if p.PMax < p.PMin {
		return fmt.Errorf("%w: plant %s: pmax %v is lower than pmin %v", ErrInvalidInput, p.Name, p.PMax, p.PMin)
	}
	return nil
}
