package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all historical data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/historical", func(r chi.Router) {
		// Price endpoints
		r.Route("/prices", func(r chi.Router) {
			r.Get("/daily/{id}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetDailyPrices(w, r, chi.URLParam(r, "id"))
			})
			r.Get("/latest/{id}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetLatestPrice(w, r, chi.URLParam(r, "id"))
			})
		})

		r.Get("/returns/daily/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetDailyReturns(w, r, chi.URLParam(r, "id"))
		})
		r.Get("/metrics/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetMetrics(w, r, chi.URLParam(r, "id"))
		})
	})
}
