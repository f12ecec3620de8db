package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/coach-crm/internal/entity"
	"github.com/xavierca1/coach-crm/internal/usecase"
)

type LeadLister interface {
	Execute(ctx context.Context, actor usecase.Actor, q usecase.LeadQuery) (usecase.Page[usecase.LeadView], error)
}

type StatusRecorder interface {
	Execute(ctx context.Context, actor usecase.Actor, in usecase.StatusChangeInput) (*usecase.StatusChangeOutput, error)
}

type LeadAssigner interface {
	Execute(ctx context.Context, actor usecase.Actor, in usecase.AssignLeadInput) (*entity.LeadAssignment, error)
}

type LeadHandler struct {
	List   LeadLister
	Status StatusRecorder
	Assign LeadAssigner
}

func NewLeadHandler(list LeadLister, status StatusRecorder, assign LeadAssigner) *LeadHandler {
	return &LeadHandler{List: list, Status: status, Assign: assign}
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.List.Execute(r.Context(), actor, usecase.LeadQuery{
		Search:    q.Get("search"),
		Status:    listParam(q, "status"),
		Source:    listParam(q, "source"),
		Region:    listParam(q, "region"),
		Priority:  listParam(q, "priority"),
		Counselor: listParam(q, "counselor"),
		Range:     rng,
		Sort:      sortParam(q),
		Page:      intParam(q, "page"),
		Size:      intParam(q, "size"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *LeadHandler) HandleStatusChange(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	var input usecase.StatusChangeInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "leadId")

	out, err := h.Status.Execute(r.Context(), actor, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *LeadHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	var input usecase.AssignLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "leadId")

	assignment, err := h.Assign.Execute(r.Context(), actor, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}
