package quotations

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/quotations", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/preview", h.Preview)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Show)
			r.Put("/save", h.Save)
			r.Post("/edits", h.Edit)
			r.Put("/options", h.UpdateOptions)
			r.Post("/send", h.Send)
			r.Post("/approve", h.Approve)
			r.Post("/reject", h.Reject)
			r.Get("/versions", h.Versions)
			r.Get("/versions/{version}", h.Version)
			r.Post("/sla-parts", h.SLAPart)
			r.Get("/summary", h.Summary)
		})
	})
}
