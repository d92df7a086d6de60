package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-rentals-api/internal/application/admin"
	"github.com/go-rentals-api/internal/application/sweep"
)

// SweepRunner triggers one complete sweep pass.
type SweepRunner interface {
	Run(ctx context.Context) (*sweep.Report, error)
}

// AdminHandler handles the analytics dashboard and the manual sweep trigger.
type AdminHandler struct {
	svc   admin.Service
	sweep SweepRunner
}

func NewAdminHandler(svc admin.Service, sweepRunner SweepRunner) *AdminHandler {
	return &AdminHandler{svc: svc, sweep: sweepRunner}
}

func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Overview(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) TopFavorites(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	top, err := h.svc.TopFavorites(r.Context(), limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *AdminHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.AlertsPerLocation(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// Sweep runs a sweep pass synchronously and returns its report. A concurrent
// run in another process answers 409.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweep.Run(r.Context())
	if err != nil {
		if errors.Is(err, sweep.ErrSweepInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
