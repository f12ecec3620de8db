package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// needsFor lists the collections each report joins.
func needsFor(kind ReportKind) Need {
	switch kind {
	case ReportFreezing:
		return NeedLeads | NeedUsers | NeedCoaches | NeedFreezes
	case ReportFollowUp, ReportReferral, ReportAppointments:
		return NeedLeads | NeedUsers | NeedEvents
	}
	return NeedLeads | NeedUsers | NeedPayments | NeedCoaches
}

type GenerateReportUseCase struct {
	Loader   *SnapshotLoader
	Builder  *ReportBuilder
	Guard    *GenerationGuard
	Observer Observer
}

func NewGenerateReportUseCase(loader *SnapshotLoader, builder *ReportBuilder, guard *GenerationGuard, obs Observer) *GenerateReportUseCase {
	return &GenerateReportUseCase{Loader: loader, Builder: builder, Guard: guard, Observer: observerOrNop(obs)}
}

func (uc *GenerateReportUseCase) Execute(ctx context.Context, actor Actor, q ReportQuery) (*ReportResult, error) {
	if _, ok := ParseReportKind(string(q.Kind)); !ok {
		return nil, &DomainError{Code: CodeInvalidReport, Message: "unknown report type: " + string(q.Kind)}
	}

	key := "report:" + string(q.Kind) + ":" + actor.UserID
	token := uc.Guard.Next(key)

	snap, scope, err := uc.Loader.Load(ctx, actor, needsFor(q.Kind))
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := uc.Builder.Build(snap, scope, q)
	if err != nil {
		return nil, err
	}
	uc.Observer.ObserveDerivation("report_"+string(q.Kind), time.Since(started))

	if !uc.Guard.IsCurrent(key, token) {
		uc.Observer.StaleDiscarded("report_" + string(q.Kind))
		return nil, &TechnicalError{Code: CodeStaleDiscarded, Message: "superseded by a newer report request"}
	}

	uc.Observer.ReportGenerated(string(q.Kind))
	logrus.WithFields(logrus.Fields{"kind": q.Kind, "actor": actor.UserID, "rows": result.TotalCount}).
		Debug("📊 [REPORT] generated")
	return &result, nil
}

type ExportReportUseCase struct {
	Reports *GenerateReportUseCase
	Writers map[string]ReportWriter
	Now     func() time.Time
}

func NewExportReportUseCase(reports *GenerateReportUseCase, writers map[string]ReportWriter) *ExportReportUseCase {
	return &ExportReportUseCase{Reports: reports, Writers: writers, Now: time.Now}
}

// Execute writes every filtered row of the report, ignoring pagination.
func (uc *ExportReportUseCase) Execute(ctx context.Context, actor Actor, q ReportQuery, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	w, ok := uc.Writers[format]
	if !ok {
		return nil, &DomainError{Code: CodeInvalidFormat, Message: "unsupported export format: " + format}
	}

	result, err := uc.Reports.Execute(ctx, actor, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	title := strings.ToUpper(string(q.Kind[:1])) + string(q.Kind[1:]) + " Report"
	if err := w.Write(&buf, title, result.Columns, result.Rows); err != nil {
		return nil, &TechnicalError{Code: CodeExportFailed, Message: "failed to write export", Err: err}
	}

	return &ExportFile{
		FileName:    fmt.Sprintf("%s_report_%s.%s", q.Kind, uc.Now().Format("2006-01-02"), w.Extension()),
		ContentType: w.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}
