package controllers

import (
	"context"
	"net/http"

	"github.com/thandondaba/quickbite-backend/api/responses"
	"github.com/thandondaba/quickbite-backend/pkg/config"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
)

// Pinger is the health-check surface each dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuickBite-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the dependencies the API cannot serve without.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, pubsubP Pinger) http.HandlerFunc {
	checks := map[string]Pinger{
		"db":     dbP,
		"redis":  redisP,
		"pubsub": pubsubP,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuickBite-Env", cfg.App.Env)

		status := map[string]string{}
		for name, check := range checks {
			if check == nil {
				status[name] = "skipped"
				continue
			}
			if err := check.Ping(r.Context()); err != nil {
				status[name] = "down"
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").WithDetails(status))
				return
			}
			status[name] = "up"
		}
		responses.WriteSuccess(w, status)
	}
}
