package mqtt

import (
	"context"
	"time"
)

// Setpoint is the output a plant must produce under a given plan.
type Setpoint struct {
	PlanID  string
	Plant   string
	PowerMW float64
	Time    time.Time
}

// SetpointPublisher delivers the setpoints of a plan to the plants.
type SetpointPublisher interface {
	// PublishSetpoints sends one message per setpoint. It returns the first
	// error that could not be recovered by retrying.
	PublishSetpoints(ctx context.Context, setpoints []Setpoint) error
}
