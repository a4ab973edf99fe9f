package web

import (
	"context"
	"net/http"
	"time"

	"github.com/hellofresh/health-go/v5"
)

// HealthCheck is one dependency check reported by /healthz.
type HealthCheck struct {
	Name    string
	Timeout time.Duration
	Check   func(ctx context.Context) error
}

// NewHealthHandler serves the aggregated status of checks.
func NewHealthHandler(serviceName, version string, checks ...HealthCheck) (http.Handler, error) {
	h, err := health.New(health.WithComponent(health.Component{
		Name:    serviceName,
		Version: version,
	}))
	if err != nil {
		return nil, err
	}

	for _, check := range checks {
		timeout := check.Timeout
		if timeout == 0 {
			timeout = 3 * time.Second
		}
		if err := h.Register(health.Config{
			Name:      check.Name,
			Timeout:   timeout,
			SkipOnErr: false,
			Check:     check.Check,
		}); err != nil {
			return nil, err
		}
	}

	return h.Handler(), nil
}
