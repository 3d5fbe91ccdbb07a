package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cartshare/cartshare-backend/api/controllers"
	cartcontrollers "github.com/cartshare/cartshare-backend/api/controllers/carts"
	"github.com/cartshare/cartshare-backend/api/middleware"
	cartsvc "github.com/cartshare/cartshare-backend/internal/carts"
	checkoutsvc "github.com/cartshare/cartshare-backend/internal/checkout"
	"github.com/cartshare/cartshare-backend/pkg/config"
	"github.com/cartshare/cartshare-backend/pkg/db"
	"github.com/cartshare/cartshare-backend/pkg/logger"
	pkgredis "github.com/cartshare/cartshare-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database db.Pinger,
	redisClient *pkgredis.Client,
	cartService *cartsvc.Service,
	checkoutCoordinator *checkoutsvc.Coordinator,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisPinger pkgredis.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, database, redisPinger))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", cartcontrollers.Create(cartService, logg))

			r.Route("/{cartID}", func(r chi.Router) {
				r.Get("/", cartcontrollers.Fetch(cartService, logg))
				r.Delete("/", cartcontrollers.Delete(cartService, logg))

				r.Post("/items", cartcontrollers.AddItem(cartService, logg))
				r.Patch("/items/{productID}", cartcontrollers.SetQuantity(cartService, logg))
				r.Delete("/items/{productID}", cartcontrollers.RemoveItem(cartService, logg))

				r.Post("/validate", cartcontrollers.Validate(cartService, logg))

				r.Post("/discount", cartcontrollers.ApplyDiscount(cartService, logg))
				r.Delete("/discount", cartcontrollers.RemoveDiscount(cartService, logg))

				r.Post("/refresh", cartcontrollers.Refresh(cartService, logg))

				r.Post("/collaborators", cartcontrollers.AddCollaborator(cartService, logg))
				r.Delete("/collaborators", cartcontrollers.RemoveCollaborator(cartService, logg))

				r.Post("/save", cartcontrollers.Save(cartService, logg))
				r.Post("/restore/{savedID}", cartcontrollers.Restore(cartService, logg))

				r.Post("/checkout", cartcontrollers.InitiateCheckout(checkoutCoordinator, logg))
				r.Delete("/checkout", cartcontrollers.CancelCheckout(checkoutCoordinator, cartService, logg))
			})
		})

		r.Get("/users/{userID}/saved-carts", cartcontrollers.ListSaved(cartService, logg))
	})

	return r
}
