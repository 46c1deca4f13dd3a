package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/kvvPro/foodcourt/cmd/foodcourt/config"
)

func (srv *Server) StartServer(ctx context.Context, wg *sync.WaitGroup, srvFlags *config.ServerFlags) *http.Server {
	r := chi.NewMux()

	// the push endpoint hijacks the connection, so it stays outside the
	// gzip/logging wrappers
	r.Get("/api/ws", http.HandlerFunc(srv.WSHandle))

	r.Group(func(r chi.Router) {
		r.Use(GzipMiddleware,
			WithLogging)
		r.Get("/ping", http.HandlerFunc(srv.PingHandle))
		r.Post("/api/user/register", http.HandlerFunc(srv.RegisterHandle))
		r.Post("/api/user/login", http.HandlerFunc(srv.AuthHandle))

		r.Group(func(r chi.Router) {
			r.Use(srv.CheckAuth)

			r.Post("/api/orders", http.HandlerFunc(srv.PutOrder))
			r.Get("/api/orders", http.HandlerFunc(srv.GetOrders))
			r.Get("/api/orders/{id}", http.HandlerFunc(srv.GetOrderHandle))
			r.Post("/api/orders/payment", http.HandlerFunc(srv.VerifyPaymentHandle))
			r.Get("/api/orders/{id}/location", http.HandlerFunc(srv.GetLocationHandle))
			r.Get("/api/rewards/info", http.HandlerFunc(srv.RewardsInfoHandle))
			r.Get("/api/rewards/benefits", http.HandlerFunc(srv.RewardsBenefitsHandle))
			r.Post("/api/rewards/redeem", http.HandlerFunc(srv.RedeemHandle))
			r.Get("/api/notifications", http.HandlerFunc(srv.NotificationsHandle))

			r.Group(func(r chi.Router) {
				r.Use(srv.CheckAdmin)

				r.Put("/api/orders/{id}/status", http.HandlerFunc(srv.UpdateStatusHandle))
				r.Put("/api/orders/{id}/location", http.HandlerFunc(srv.UpdateLocationHandle))
				r.Get("/api/admin/orders", http.HandlerFunc(srv.AdminOrdersHandle))
			})
		})
	})

	Sugar.Infow(
		"Starting server",
		"address", srv.Address,
	)

	httpSrv := &http.Server{
		Addr:    srv.Address,
		Handler: r,
	}
	go func() {
		defer wg.Done()
		defer srv.quit(ctx)

		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			Sugar.Fatalw(err.Error(), "event", "start server")
		}
	}()

	return httpSrv
}
