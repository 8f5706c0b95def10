package catalog

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/bodyshop/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Operations(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"operations": h.service.ListOperations()})
}

func (h *Handler) PartDescriptions(w http.ResponseWriter, r *http.Request) {
	pc, err := httpx.PricingContext(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.ListPartDescriptions(r.Context(), pc.TenantID)
	if err != nil {
		h.logger.Error("list part descriptions failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"part_descriptions": list})
}

func (h *Handler) CreatePartDescription(w http.ResponseWriter, r *http.Request) {
	pc, err := httpx.PricingContext(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreatePartDescriptionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	p, err := h.service.CreatePartDescription(r.Context(), pc.TenantID, req)
	if err != nil {
		if httpx.IsServerError(err) {
			h.logger.Error("create part description failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}
