package controllers

import (
	"net/http"

	"github.com/cartshare/cartshare-backend/api/responses"
	"github.com/cartshare/cartshare-backend/pkg/config"
	"github.com/cartshare/cartshare-backend/pkg/db"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/logger"
	pkgredis "github.com/cartshare/cartshare-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CartShare-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis. Either one
// failing reports the process as not ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, redis pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CartShare-Env", cfg.App.Env)

		if err := database.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
			return
		}
		if redis != nil {
			if err := redis.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
