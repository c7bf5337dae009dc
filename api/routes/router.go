package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bingbai-ux/baoflow-backend/api/controllers"
	"github.com/bingbai-ux/baoflow-backend/api/middleware"
	"github.com/bingbai-ux/baoflow-backend/internal/lifecycle"
	"github.com/bingbai-ux/baoflow-backend/internal/payments"
	"github.com/bingbai-ux/baoflow-backend/internal/quoting"
	"github.com/bingbai-ux/baoflow-backend/pkg/config"
	"github.com/bingbai-ux/baoflow-backend/pkg/db"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
	"github.com/bingbai-ux/baoflow-backend/pkg/rates"
)

// Deps bundles everything the HTTP surface needs. Registry may be nil, in
// which case /metrics is not mounted.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Lifecycle *lifecycle.Service
	Quoting   *quoting.Coordinator
	Payments  *payments.Service
	Rates     *rates.Provider
	Registry  *prometheus.Registry
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(d.Logger))
	r.Use(middleware.RequestID(d.Logger))
	r.Use(middleware.Logging(d.Logger))

	r.Get("/health/live", controllers.HealthLive(d.Config))
	r.Get("/health/ready", controllers.HealthReady(d.Config, d.Logger, d.DB))

	if d.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/deals", func(r chi.Router) {
			r.Post("/", controllers.DealCreate(d.Lifecycle, d.Logger))

			r.Route("/{dealId}", func(r chi.Router) {
				r.Get("/", controllers.DealDetail(d.Lifecycle, d.Logger))
				r.Post("/advance", controllers.DealAdvance(d.Lifecycle, d.Logger))
				r.Get("/transitions", controllers.DealTransitions(d.Lifecycle, d.Logger))

				r.Route("/factories", func(r chi.Router) {
					r.Post("/invite", controllers.QuotingInvite(d.Quoting, d.Logger))
					r.Post("/{factoryId}/response", controllers.QuotingRecordResponse(d.Quoting, d.Logger))
					r.Post("/{factoryId}/select", controllers.QuotingSelectWinner(d.Quoting, d.Logger))
				})
				r.Get("/candidates", controllers.QuotingCandidates(d.Quoting, d.Logger))
				r.Post("/quotes", controllers.QuotingSubmitQuote(d.Quoting, d.Logger))

				r.Post("/payments", controllers.PaymentSchedule(d.Payments, d.Logger))
				r.Get("/payments", controllers.PaymentList(d.Payments, d.Logger))
			})
		})

		r.Post("/quotes/{quoteId}/approve", controllers.QuotingApproveQuote(d.Quoting, d.Logger))

		r.Route("/payments", func(r chi.Router) {
			r.Post("/{paymentId}/status", controllers.PaymentMarkStatus(d.Payments, d.Logger))
			r.Post("/fees/compare", controllers.PaymentCompareFees(d.Payments, d.Logger))
		})

		r.Route("/pricing", func(r chi.Router) {
			r.Post("/calculate", controllers.PricingCalculate(d.Rates, d.Config.Billing, d.Logger))
			r.Post("/quantities", controllers.PricingQuantities(d.Rates, d.Config.Billing, d.Logger))
			r.Post("/shipping-options", controllers.PricingShippingOptions(d.Rates, d.Config.Billing, d.Logger))
		})
	})

	return r
}
