package rates

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/insurers/{insurerID}", func(r chi.Router) {
		r.Get("/schedules", h.ListSchedules)
		r.Post("/schedules", h.CreateSchedule)
		r.Get("/schedules/resolve", h.Resolve)
		r.Post("/part-price", h.PartPrice)
		r.Post("/towing", h.Towing)
		r.Get("/outwork/{type}", h.Outwork)
	})
}
