package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/janekbaraniewski/co2meter/internal/config"
	"github.com/janekbaraniewski/co2meter/internal/core"
	"github.com/janekbaraniewski/co2meter/internal/fuel"
	"github.com/janekbaraniewski/co2meter/internal/intangles"
)

// newRunner builds one aggregation per call from the current config. The
// token is resolved on every run so credentials written while the dashboard
// is open are picked up.
func newRunner(cfg *atomic.Pointer[config.Config], httpClient *http.Client, credentialsPath string, verbose bool) core.Runner {
	return func(ctx context.Context) (fuel.Result, error) {
		c := *cfg.Load()

		creds, err := config.LoadCredentialsFrom(credentialsPath)
		if err != nil {
			log.Printf("credentials: %v", err)
		}
		token := c.API.ResolveToken(creds)
		if token == "" {
			return fuel.Result{}, fmt.Errorf("%w: no token in $%s or %s",
				intangles.ErrUnauthorized, c.API.TokenEnv, credentialsPath)
		}

		opts := c.API.ClientOptions(token, verbose)
		opts.HTTPClient = httpClient
		return fuel.Aggregate(ctx, intangles.NewClient(opts), c.API.PageSize, c.UnitSpec())
	}
}
