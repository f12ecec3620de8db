package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/coach-crm/internal/usecase"
)

type ReportGenerator interface {
	Execute(ctx context.Context, actor usecase.Actor, q usecase.ReportQuery) (*usecase.ReportResult, error)
}

type ReportExporter interface {
	Execute(ctx context.Context, actor usecase.Actor, q usecase.ReportQuery, format string) (*usecase.ExportFile, error)
}

type ReportHandler struct {
	Reports ReportGenerator
	Export  ReportExporter
}

func NewReportHandler(reports ReportGenerator, export ReportExporter) *ReportHandler {
	return &ReportHandler{Reports: reports, Export: export}
}

func reportQuery(r *http.Request) (usecase.ReportQuery, usecase.ValidationErrors) {
	q := r.URL.Query()
	rng, errs := parseRange(q)
	return usecase.ReportQuery{
		Kind:      usecase.ReportKind(chi.URLParam(r, "kind")),
		Search:    q.Get("search"),
		Status:    listParam(q, "status"),
		Counselor: listParam(q, "counselor"),
		Package:   listParam(q, "package"),
		Range:     rng,
		Sort:      sortParam(q),
		Page:      intParam(q, "page"),
		Size:      intParam(q, "size"),
	}, errs
}

func (h *ReportHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	query, errs := reportQuery(r)
	if len(errs) > 0 {
		writeError(w, r, errs)
		return
	}

	result, err := h.Reports.Execute(r.Context(), actor, query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	query, errs := reportQuery(r)
	if len(errs) > 0 {
		writeError(w, r, errs)
		return
	}

	file, err := h.Export.Execute(r.Context(), actor, query, r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}
