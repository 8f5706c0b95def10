package rates

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/bodyshop/internal/platform/httpx"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	pc, insurerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	schedules, err := h.service.ListSchedules(r.Context(), pc, insurerID)
	if err != nil {
		h.fail(w, r, "list schedules failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"schedules": schedules})
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	pc, insurerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req CreateScheduleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	schedule, err := h.service.CreateSchedule(r.Context(), pc, insurerID, req)
	if err != nil {
		h.fail(w, r, "create schedule failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, schedule)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	pc, insurerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	schedule, err := h.service.Resolve(r.Context(), pc, insurerID)
	if err != nil {
		h.fail(w, r, "resolve schedule failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, schedule)
}

func (h *Handler) PartPrice(w http.ResponseWriter, r *http.Request) {
	pc, insurerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req PartPriceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	result, err := h.service.PartPrice(r.Context(), pc, insurerID, req)
	if err != nil {
		h.fail(w, r, "part price failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Towing(w http.ResponseWriter, r *http.Request) {
	pc, insurerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req TowingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	result, err := h.service.Towing(r.Context(), pc, insurerID, req)
	if err != nil {
		h.fail(w, r, "towing cost failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Outwork(w http.ResponseWriter, r *http.Request) {
	pc, insurerID, ok := h.scope(w, r)
	if !ok {
		return
	}
	allowance, err := h.service.OutworkAllowance(r.Context(), pc, insurerID, OutworkType(chi.URLParam(r, "type")))
	if err != nil {
		h.fail(w, r, "outwork allowance failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, allowance)
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (shared.PricingContext, int64, bool) {
	pc, err := httpx.PricingContext(r)
	if err != nil {
		httpx.RespondError(w, err)
		return shared.PricingContext{}, 0, false
	}
	insurerID, err := httpx.IDParam(r, "insurerID")
	if err != nil {
		httpx.RespondError(w, err)
		return shared.PricingContext{}, 0, false
	}
	return pc, insurerID, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	level := slog.LevelDebug
	if httpx.IsServerError(err) {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, msg, slog.Any("error", err))
	httpx.RespondError(w, err)
}
