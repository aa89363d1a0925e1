package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/janekbaraniewski/co2meter/internal/fuel"
	"github.com/janekbaraniewski/co2meter/internal/intangles"
)

type Status string

const (
	StatusOK      Status = "OK"
	StatusAuth    Status = "AUTH_REQUIRED"
	StatusConfig  Status = "CONFIG_ERROR"
	StatusNoData  Status = "NO_DATA"
	StatusError   Status = "ERROR"
	StatusUnknown Status = "UNKNOWN"
)

// Reading is the outcome of one aggregation run as handed to the display.
// Result is only meaningful when Status is StatusOK.
type Reading struct {
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Result    fuel.Result   `json:"result"`
	Err       error         `json:"-"`
}

func (r Reading) OK() bool { return r.Status == StatusOK }

// Metric is the derived value in tonnes of CO2, or false when the run failed.
func (r Reading) Metric() (float64, bool) {
	if !r.OK() {
		return 0, false
	}
	return r.Result.Metric, true
}

func NewReading(res fuel.Result, err error, started time.Time, took time.Duration) Reading {
	r := Reading{Timestamp: started, Duration: took}
	if err == nil {
		r.Status = StatusOK
		r.Result = res
		r.Message = fmt.Sprintf("%.3f tCO2 · %d rows over %d pages · field %s",
			res.Metric, res.Rows, res.Pages, res.FieldKey)
		return r
	}

	r.Err = err
	r.Status = ClassifyError(err)
	switch {
	case r.Status == StatusAuth:
		r.Message = fmt.Sprintf("unauthorized: check the Intangles token (%v)", err)
	case errors.Is(err, context.DeadlineExceeded):
		r.Message = fmt.Sprintf("run timed out after %s", took.Round(time.Millisecond))
	default:
		r.Message = err.Error()
	}
	return r
}

// ClassifyError maps a run failure onto a display status.
func ClassifyError(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, intangles.ErrUnauthorized):
		return StatusAuth
	case errors.Is(err, fuel.ErrInvalidUnit), errors.Is(err, fuel.ErrInvalidPageSize):
		return StatusConfig
	case errors.Is(err, fuel.ErrNoData):
		return StatusNoData
	default:
		return StatusError
	}
}
