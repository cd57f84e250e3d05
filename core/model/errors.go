package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks requests rejected before allocation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownPlantType marks plants whose type cannot be priced.
	ErrUnknownPlantType = errors.New("unknown plant type")
	// ErrLoadNotMet marks plans whose total deviates from the load.
	ErrLoadNotMet = errors.New("load not met")
)

// UnknownPlantTypeError reports the offending plant type.
type UnknownPlantTypeError struct {
	Plant string
	Type  string
}

func (e *UnknownPlantTypeError) Error() string {
	if e.Plant == "" {
		return fmt.Sprintf("unknown power plant type: %s", e.Type)
	}
	return fmt.Sprintf("unknown power plant type for %s: %s", e.Plant, e.Type)
}

// Is makes errors.Is(err, ErrUnknownPlantType) match.
func (e *UnknownPlantTypeError) Is(target error) bool { return target == ErrUnknownPlantType }

// LoadNotMetError carries the requested and achieved totals in MW.
type LoadNotMetError struct {
	Required float64
	Achieved float64
}

func (e *LoadNotMetError) Error() string {
	return fmt.Sprintf("cannot meet load requirement: required %.1f MW, allocated %.1f MW", e.Required, e.Achieved)
}

// Is makes errors.Is(err, ErrLoadNotMet) match.
func (e *LoadNotMetError) Is(target error) bool { return target == ErrLoadNotMet }
