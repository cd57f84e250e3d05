package mqtt

import (
	"context"
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/productionplan/core/mqtt"
)

// SetpointPublisher mirrors the core mqtt.SetpointPublisher interface.
type SetpointPublisher = coremqtt.SetpointPublisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Messages   map[string]float64
	FailPlants map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Messages:   make(map[string]float64),
		FailPlants: make(map[string]bool),
	}
}

// PublishSetpoints records the setpoints or fails on the first plant
// configured to fail.
func (m *MockPublisher) PublishSetpoints(ctx context.Context, setpoints []coremqtt.Setpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sp := range setpoints {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.FailPlants[sp.Plant] {
			return fmt.Errorf("publish failed for %s", sp.Plant)
		}
		m.Messages[sp.Plant] = sp.PowerMW
	}
	return nil
}

// Get returns the last setpoint recorded for a plant.
func (m *MockPublisher) Get(plant string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Messages[plant]
	return v, ok
}
