package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/coach-crm/internal/usecase"
)

type DashboardService interface {
	Execute(ctx context.Context, actor usecase.Actor, f usecase.DashboardFilter) (*usecase.DashboardOutput, error)
}

type DashboardHandler struct {
	Dashboard DashboardService
}

func NewDashboardHandler(dashboard DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard}
}

type DashboardResponse struct {
	*usecase.DashboardOutput
	Warning string `json:"warning,omitempty"`
}

func (h *DashboardHandler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	rng, errs := parseRange(q)
	if len(errs) > 0 {
		writeError(w, r, errs)
		return
	}

	out, err := h.Dashboard.Execute(r.Context(), actor, usecase.DashboardFilter{
		Status:   listParam(q, "status"),
		Source:   listParam(q, "source"),
		Region:   listParam(q, "region"),
		Priority: listParam(q, "priority"),
		Range:    rng,
	})
	if err != nil {
		if out != nil && out.Stale {
			writeJSON(w, http.StatusOK, DashboardResponse{DashboardOutput: out, Warning: "showing last known data: " + err.Error()})
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DashboardResponse{DashboardOutput: out})
}
