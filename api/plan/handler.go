package plan

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kilianp07/productionplan/core/model"
	"github.com/kilianp07/productionplan/core/monitoring"
	"github.com/kilianp07/productionplan/infra/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Planner computes production plans.
type Planner interface {
	Plan(ctx context.Context, req model.ProductionPlanRequest) (model.Plan, error)
}

type errorResponse struct {
	Error    string   `json:"error" msgpack:"error"`
	Required *float64 `json:"required,omitempty" msgpack:"required,omitempty"`
	Achieved *float64 `json:"achieved,omitempty" msgpack:"achieved,omitempty"`
}

// NewHandler returns the handler of POST /productionplan.
func NewHandler(p Planner, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in := requestCodec(r)
		out := responseCodec(r)

		var req model.ProductionPlanRequest
		if err := in.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
			if errors.Is(err, model.ErrUnknownPlantType) {
				writeError(w, out, log, err)
				return
			}
			writeError(w, out, log, fmt.Errorf("%w: decode body: %v", model.ErrInvalidInput, err))
			return
		}

		plan, err := p.Plan(r.Context(), req)
		if err != nil {
			writeError(w, out, log, err)
			return
		}
		write(w, out, log, http.StatusOK, plan)
	})
}

// StatusOf maps a plan error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnknownPlantType), errors.Is(err, model.ErrLoadNotMet):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, c codec, log logger.Logger, err error) {
	status := StatusOf(err)
	body := errorResponse{Error: err.Error()}
	var lnm *model.LoadNotMetError
	if errors.As(err, &lnm) {
		body.Required = &lnm.Required
		body.Achieved = &lnm.Achieved
	}
	if status == http.StatusInternalServerError {
		log.Errorf("production plan: %v", err)
		monitoring.CaptureException(err, map[string]string{"module": "api"})
	}
	write(w, c, log, status, body)
}

func write(w http.ResponseWriter, c codec, log logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", c.ContentType())
	w.WriteHeader(status)
	if err := c.Encode(w, v); err != nil {
		log.Errorf("encode response: %v", err)
		monitoring.CaptureException(fmt.Errorf("encode response: %w", err), map[string]string{"module": "api"})
	}
}
