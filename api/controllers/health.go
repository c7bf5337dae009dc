package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/bingbai-ux/baoflow-backend/api/responses"
	"github.com/bingbai-ux/baoflow-backend/pkg/config"
	"github.com/bingbai-ux/baoflow-backend/pkg/db"
	pkgerrors "github.com/bingbai-ux/baoflow-backend/pkg/errors"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
)

const envHeader = "X-BaoFlow-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not wired"))
			return
		}
		if err := dbP.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
