package quotations

import (
	"log/slog"
	"net/http"
	"strconv"

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pc, err := httpx.PricingContext(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	req := ListQuotationsRequest{
		Limit:  httpx.IntQuery(r, "limit", 20),
		Offset: httpx.IntQuery(r, "offset", 0),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := Status(status)
		req.Status = &st
	}
	if jobID := httpx.IntQuery(r, "job_id", 0); jobID > 0 {
		id := int64(jobID)
		req.JobID = &id
	}
	if insurerID := httpx.IntQuery(r, "insurer_id", 0); insurerID > 0 {
		id := int64(insurerID)
		req.InsurerID = &id
	}
	list, page, err := h.service.List(r.Context(), pc, req)
	if err != nil {
		h.fail(w, r, "list quotations failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotations": list, "pagination": page})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	pc, err := httpx.PricingContext(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	q, err := h.service.Create(r.Context(), pc, req, httpx.ActorID(r))
	if err != nil {
		h.fail(w, r, "create quotation failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	q, err := h.service.Get(r.Context(), pc, id)
	if err != nil {
		h.fail(w, r, "get quotation failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req SaveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	key := r.Header.Get(httpx.HeaderIdempotencyKey)
	q, err := h.service.SaveIdempotent(r.Context(), pc, id, key, ItemsFromInput(req.Items), httpx.ActorID(r))
	if err != nil {
		h.fail(w, r, "save quotation failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req EditRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	q, err := h.service.ApplyEdits(r.Context(), pc, id, req, httpx.ActorID(r))
	if err != nil {
		h.fail(w, r, "edit quotation failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	var opts Options
	if err := httpx.DecodeJSON(r, &opts); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	q, err := h.service.UpdateOptions(r.Context(), pc, id, opts, httpx.ActorID(r))
	if err != nil {
		h.fail(w, r, "update options failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	q, err := h.service.Send(r.Context(), pc, id, httpx.ActorID(r))
	if err != nil {
		h.fail(w, r, "send quotation failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	q, err := h.service.Approve(r.Context(), pc, id, httpx.ActorID(r))
	if err != nil {
		h.fail(w, r, "approve quotation failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req RejectRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
			return
		}
	}
	q, err := h.service.Reject(r.Context(), pc, id, req.Reason, httpx.ActorID(r))
	if err != nil {
		h.fail(w, r, "reject quotation failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	versions, err := h.service.Versions(r.Context(), pc, id)
	if err != nil {
		h.fail(w, r, "list versions failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"versions": versions})
}

func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || n <= 0 {
		httpx.RespondError(w, shared.NewValidationError("version", "must be a positive integer"))
		return
	}
	v, err := h.service.Version(r.Context(), pc, id, n)
	if err != nil {
		h.fail(w, r, "get version failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) SLAPart(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req SLAPartRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	q, err := h.service.PriceSLAPart(r.Context(), pc, id, req, httpx.ActorID(r))
	if err != nil {
		h.fail(w, r, "sla part failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	pc, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	sum, err := h.service.Summary(r.Context(), pc, id)
	if err != nil {
		h.fail(w, r, "summary failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	preview, err := h.service.Preview(req)
	if err != nil {
		h.fail(w, r, "preview failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, preview)
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (shared.PricingContext, int64, bool) {
	pc, err := httpx.PricingContext(r)
	if err != nil {
		httpx.RespondError(w, err)
		return shared.PricingContext{}, 0, false
	}
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return shared.PricingContext{}, 0, false
	}
	return pc, id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	level := slog.LevelDebug
	if httpx.IsServerError(err) {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, msg, slog.Any("error", err))
	httpx.RespondError(w, err)
}
