package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"topupmart/internal/app/handler"
	"topupmart/internal/app/metrics"
	middleware2 "topupmart/internal/app/middleware"
	"topupmart/internal/app/service/payment"
)

func (a *App) Router() http.Handler {

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware2.Log(a.logger))
	r.Use(middleware2.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{a.config.Payment.ClientBaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	auth := middleware2.Auth(a.session)

	uh := handler.NewUserHandler(a.users, a.session)
	ph := handler.NewPaymentHandler(a.payments)
	wh := handler.NewWalletHandler(a.wallet)
	oh := handler.NewOrderHandler(a.orderSvc, a.orders)
	gh := handler.NewGatewayHandler(a.gateways)
	eh := handler.NewEventsHandler(a.feed)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", uh.Register)
			r.Post("/login", uh.Login)
		})

		// the gateway posts browsers and notifications back here, no session
		r.Route("/payment", func(r chi.Router) {
			r.Post("/ipn", ph.IPN)
			r.Post("/success/{tranID}", ph.Redirect(payment.RedirectSuccess))
			r.Post("/fail/{tranID}", ph.Redirect(payment.RedirectFail))
			r.Post("/cancel/{tranID}", ph.Redirect(payment.RedirectCancel))

			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Post("/initiate", ph.Initiate)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Get("/gateways", gh.ListEnabled)
			r.Get("/events", eh.Stream)

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/balance", wh.Balance)
				r.Get("/transactions", wh.List)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", oh.List)
				r.Post("/", oh.Create)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware2.Admin)

				r.Get("/transactions", wh.ListAll)
				r.Post("/transactions/{id}/status", wh.SetTopUpStatus)
				r.Post("/balance-adjustments", wh.Adjust)

				r.Get("/orders", oh.ListAll)
				r.Post("/orders/{id}/status", oh.SetStatus)

				r.Route("/gateways", func(r chi.Router) {
					r.Get("/", gh.ListAll)
					r.Post("/", gh.Create)
					r.Put("/{id}", gh.Update)
					r.Delete("/{id}", gh.Delete)
				})
			})
		})
	})

	return r
}
