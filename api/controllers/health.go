package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/freshcart/storefront/api/responses"
	pkgerrors "github.com/freshcart/storefront/pkg/errors"
	"github.com/freshcart/storefront/pkg/config"
	"github.com/freshcart/storefront/pkg/kvstore"
	"github.com/freshcart/storefront/pkg/logger"
)

const envHeader = "X-Freshcart-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports 503 naming the ones down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]kvstore.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
