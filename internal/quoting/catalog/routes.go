package catalog

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/operations", h.Operations)
		r.Get("/part-descriptions", h.PartDescriptions)
		r.Post("/part-descriptions", h.CreatePartDescription)
	})
}
