package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/coach-crm/internal/entity"
	"github.com/xavierca1/coach-crm/internal/usecase"
)

type BillService interface {
	Preview(in usecase.BillInput) (usecase.BillBreakdown, error)
	Execute(ctx context.Context, actor usecase.Actor, in usecase.CreateBillInput) (*entity.Bill, error)
	ForLead(ctx context.Context, actor usecase.Actor, leadID string) ([]entity.Bill, error)
}

type BillHandler struct {
	Bills BillService
}

func NewBillHandler(bills BillService) *BillHandler {
	return &BillHandler{Bills: bills}
}

func (h *BillHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var input usecase.BillInput
	if !decodeJSON(w, r, &input) {
		return
	}

	breakdown, err := h.Bills.Preview(input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (h *BillHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	var input usecase.CreateBillInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "leadId")

	bill, err := h.Bills.Execute(r.Context(), actor, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

func (h *BillHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	bills, err := h.Bills.ForLead(r.Context(), actor, chi.URLParam(r, "leadId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}
