package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/kitchen-display/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware дисплея.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireSession(h.sessions))

			r.Get("/state", h.GetState)
			r.Get("/orders", h.GetOrders)
			r.Get("/notifications", h.GetNotifications)
			r.Post("/swipe", h.Swipe)

			r.Post("/orders/{orderID}/select", h.SelectOrder)
			r.Post("/orders/{orderID}/status", h.ChangeStatus)
			r.Post("/orders/{orderID}/read", h.MarkAsRead)
			r.Get("/orders/{orderID}/receipt", h.GetReceipt)
		})
	})

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
