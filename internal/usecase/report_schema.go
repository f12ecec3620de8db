package usecase

import (
	"strings"
	"time"
)

type ReportStats map[string]float64

// ReportQuery carries the list controls of a report view.
type ReportQuery struct {
	Kind      ReportKind
	Search    string
	Status    []string
	Counselor []string
	Package   []string
	Range     DateRange
	Sort      SortState
	Page      int
	Size      int
}

// ReportResult is one page of a report plus its stats. Rows holds every filtered row for export.
type ReportResult struct {
	Kind       ReportKind  `json:"kind"`
	Columns    []string    `json:"columns"`
	Items      any         `json:"items"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
	Stats      ReportStats `json:"stats"`
	Rows       [][]any     `json:"-"`
}

// reportSchema describes how the generic pipeline reads one row type.
type reportSchema[T any] struct {
	columns   []string
	cells     func(T) []any
	search    []func(T) string
	status    func(T) string
	counselor func(T) string
	pkg       func(T) string
	date      func(T) *time.Time
	sorter    Sorter[T]
	stats     func([]T) ReportStats
}

func runReport[T any](kind ReportKind, rows []T, schema reportSchema[T], q ReportQuery) ReportResult {
	spec := FilterSpec[T]{
		Search:       q.Search,
		SearchFields: schema.search,
		DateField:    schema.date,
		Range:        q.Range,
	}
	if schema.status != nil {
		spec.Selects = append(spec.Selects, Select[T]{Value: schema.status, Options: q.Status})
	}
	if schema.counselor != nil {
		spec.Selects = append(spec.Selects, Select[T]{Value: schema.counselor, Options: q.Counselor})
	}
	if schema.pkg != nil {
		spec.Selects = append(spec.Selects, Select[T]{Value: schema.pkg, Options: q.Package})
	}

	filtered := schema.sorter.Sort(Filter(rows, spec), q.Sort)
	page := Paginate(filtered, q.Page, q.Size)

	all := make([][]any, 0, len(filtered))
	for _, r := range filtered {
		all = append(all, schema.cells(r))
	}

	return ReportResult{
		Kind:       kind,
		Columns:    schema.columns,
		Items:      page.Items,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
		Stats:      schema.stats(rows),
		Rows:       all,
	}
}

// Build derives the report of q.Kind from a scoped snapshot.
func (b *ReportBuilder) Build(snap Snapshot, scope Scope, q ReportQuery) (ReportResult, error) {
	switch q.Kind {
	case ReportBalance:
		return runReport(q.Kind, b.Balance(snap), balanceSchema, q), nil
	case ReportSales:
		return runReport(q.Kind, b.Sales(snap), salesSchema, q), nil
	case ReportActivation:
		return runReport(q.Kind, b.Activation(snap), activationSchema, q), nil
	case ReportExpiry:
		return runReport(q.Kind, b.Expiry(snap), expirySchema, q), nil
	case ReportRenewal:
		return runReport(q.Kind, b.Renewal(snap), renewalSchema, q), nil
	case ReportFreezing:
		return runReport(q.Kind, b.Freezing(snap, scope), freezingSchema, q), nil
	case ReportFollowUp:
		return runReport(q.Kind, b.FollowUp(snap), followUpSchema, q), nil
	case ReportAppointments:
		return runReport(q.Kind, b.Appointments(snap), appointmentSchema(), q), nil
	case ReportReferral:
		return runReport(q.Kind, b.Referral(snap), referralSchema(b), q), nil
	}
	return ReportResult{}, &DomainError{Code: CodeInvalidReport, Message: "unknown report type: " + string(q.Kind)}
}

func dateCell(t *time.Time) any {
	if t == nil {
		return notSet
	}
	return t.Format("2006-01-02")
}

func dayCell(t time.Time) string { return t.Format("2006-01-02") }

func ptr(t time.Time) *time.Time { return &t }

func count[T any](rows []T, pred func(T) bool) float64 {
	n := 0
	for _, r := range rows {
		if pred(r) {
			n++
		}
	}
	return float64(n)
}

func sum[T any](rows []T, val func(T) float64) float64 {
	total := 0.0
	for _, r := range rows {
		total += val(r)
	}
	return total
}

var balanceSchema = reportSchema[BalanceRow]{
	columns: []string{"Client Name", "Contact", "Email", "Package", "Total Amount", "Amount Paid", "Balance", "Due Date", "Due Days", "Counselor", "Coach"},
	cells: func(r BalanceRow) []any {
		return []any{r.ClientName, r.Contact, r.Email, r.Package, r.TotalAmount, r.AmountPaid, r.Balance, dateCell(r.DueDate), r.DueDays, r.Counselor, r.Coach}
	},
	search: []func(BalanceRow) string{
		func(r BalanceRow) string { return r.ClientName },
		func(r BalanceRow) string { return r.Contact },
		func(r BalanceRow) string { return r.Package },
		func(r BalanceRow) string { return r.Counselor },
	},
	status: func(r BalanceRow) string {
		if r.Balance <= 0 {
			return "Paid"
		}
		return "Pending"
	},
	counselor: func(r BalanceRow) string { return r.Counselor },
	pkg:       func(r BalanceRow) string { return r.Package },
	date:      func(r BalanceRow) *time.Time { return ptr(r.LeadDate) },
	sorter: Sorter[BalanceRow]{
		"clientName":  {String: func(r BalanceRow) string { return r.ClientName }},
		"package":     {String: func(r BalanceRow) string { return r.Package }},
		"totalAmount": {Number: func(r BalanceRow) float64 { return r.TotalAmount }},
		"amountPaid":  {Number: func(r BalanceRow) float64 { return r.AmountPaid }},
		"balance":     {Number: func(r BalanceRow) float64 { return r.Balance }},
		"dueDate":     {Time: func(r BalanceRow) *time.Time { return r.DueDate }},
		"dueDays":     {Number: func(r BalanceRow) float64 { return float64(r.DueDays) }},
		"counselor":   {String: func(r BalanceRow) string { return r.Counselor }},
	},
	stats: func(rows []BalanceRow) ReportStats {
		return ReportStats{
			"total":        float64(len(rows)),
			"paid":         count(rows, func(r BalanceRow) bool { return r.Balance <= 0 }),
			"pending":      count(rows, func(r BalanceRow) bool { return r.Balance > 0 }),
			"totalBalance": sum(rows, func(r BalanceRow) float64 { return r.Balance }),
			"overdue":      count(rows, func(r BalanceRow) bool { return r.DueDays < 0 }),
		}
	},
}

var salesSchema = reportSchema[SalesRow]{
	columns: []string{"Date", "Client Name", "Contact", "Package", "Amount", "Upsell/Renewal", "Counselor", "Balance", "City", "Source"},
	cells: func(r SalesRow) []any {
		return []any{dayCell(r.Date), r.ClientName, r.Contact, r.Package, r.Amount, r.UpsellRenewal, r.Counselor, r.Balance, r.City, r.Source}
	},
	search: []func(SalesRow) string{
		func(r SalesRow) string { return r.ClientName },
		func(r SalesRow) string { return r.Contact },
		func(r SalesRow) string { return r.Package },
		func(r SalesRow) string { return r.Counselor },
		func(r SalesRow) string { return r.Source },
		func(r SalesRow) string { return r.City },
	},
	status:    func(r SalesRow) string { return r.UpsellRenewal },
	counselor: func(r SalesRow) string { return r.Counselor },
	pkg:       func(r SalesRow) string { return r.Package },
	date:      func(r SalesRow) *time.Time { return ptr(r.Date) },
	sorter: Sorter[SalesRow]{
		"date":       {Time: func(r SalesRow) *time.Time { return ptr(r.Date) }},
		"clientName": {String: func(r SalesRow) string { return r.ClientName }},
		"package":    {String: func(r SalesRow) string { return r.Package }},
		"amount":     {Number: func(r SalesRow) float64 { return r.Amount }},
		"balance":    {Number: func(r SalesRow) float64 { return r.Balance }},
		"counselor":  {String: func(r SalesRow) string { return r.Counselor }},
		"city":       {String: func(r SalesRow) string { return r.City }},
		"source":     {String: func(r SalesRow) string { return r.Source }},
	},
	stats: func(rows []SalesRow) ReportStats {
		return ReportStats{
			"total":        float64(len(rows)),
			"completed":    count(rows, func(r SalesRow) bool { return r.Amount > 0 }),
			"totalRevenue": sum(rows, func(r SalesRow) float64 { return r.Amount }),
			"upsell":       count(rows, func(r SalesRow) bool { return r.UpsellRenewal == "Upsell" }),
			"renewal":      count(rows, func(r SalesRow) bool { return r.UpsellRenewal == "Renewal" }),
		}
	},
}

var activationColumns = []string{"Client Name", "Contact", "Package", "Joining Date", "Activation Date", "Expiry Date", "Left Days", "Counselor", "Coach"}

func activationCells(r ActivationRow) []any {
	return []any{r.ClientName, r.Contact, r.Package, dayCell(r.JoiningDate), dayCell(r.ActivationDate), dateCell(r.ExpiryDate), r.LeftDays, r.Counselor, r.Coach}
}

func activationSorter() Sorter[ActivationRow] {
	return Sorter[ActivationRow]{
		"clientName":     {String: func(r ActivationRow) string { return r.ClientName }},
		"package":        {String: func(r ActivationRow) string { return r.Package }},
		"joiningDate":    {Time: func(r ActivationRow) *time.Time { return ptr(r.JoiningDate) }},
		"activationDate": {Time: func(r ActivationRow) *time.Time { return ptr(r.ActivationDate) }},
		"expiryDate":     {Time: func(r ActivationRow) *time.Time { return r.ExpiryDate }},
		"leftDays":       {Number: func(r ActivationRow) float64 { return float64(r.LeftDays) }},
		"counselor":      {String: func(r ActivationRow) string { return r.Counselor }},
	}
}

var activationSearch = []func(ActivationRow) string{
	func(r ActivationRow) string { return r.ClientName },
	func(r ActivationRow) string { return r.Contact },
	func(r ActivationRow) string { return r.Package },
	func(r ActivationRow) string { return r.Counselor },
}

// embedded lifts an ActivationRow accessor to a row type that embeds it.
func embedded[T any, V any](get func(T) ActivationRow, f func(ActivationRow) V) func(T) V {
	return func(r T) V { return f(get(r)) }
}

func liftSorter[T any](get func(T) ActivationRow) Sorter[T] {
	out := Sorter[T]{}
	for name, key := range activationSorter() {
		k := SortKey[T]{}
		if key.String != nil {
			k.String = embedded(get, key.String)
		}
		if key.Number != nil {
			k.Number = embedded(get, key.Number)
		}
		if key.Time != nil {
			k.Time = embedded(get, key.Time)
		}
		out[name] = k
	}
	return out
}

func liftSearch[T any](get func(T) ActivationRow) []func(T) string {
	out := make([]func(T) string, 0, len(activationSearch))
	for _, f := range activationSearch {
		out = append(out, embedded(get, f))
	}
	return out
}

func activationStatus(r ActivationRow) string {
	if r.LeftDays > 0 {
		return "Active"
	}
	return "Expired"
}

var activationSchema = reportSchema[ActivationRow]{
	columns:   activationColumns,
	cells:     activationCells,
	search:    activationSearch,
	status:    activationStatus,
	counselor: func(r ActivationRow) string { return r.Counselor },
	pkg:       func(r ActivationRow) string { return r.Package },
	date:      func(r ActivationRow) *time.Time { return ptr(r.JoiningDate) },
	sorter:    activationSorter(),
	stats: func(rows []ActivationRow) ReportStats {
		return ReportStats{
			"total":        float64(len(rows)),
			"active":       count(rows, func(r ActivationRow) bool { return r.LeftDays > 0 }),
			"expired":      count(rows, func(r ActivationRow) bool { return r.LeftDays <= 0 }),
			"expiringSoon": count(rows, func(r ActivationRow) bool { return r.LeftDays > 0 && r.LeftDays <= 30 }),
		}
	},
}

func expiryBase(r ExpiryRow) ActivationRow { return r.ActivationRow }

var expirySchema = reportSchema[ExpiryRow]{
	columns: append(append([]string{}, activationColumns...), "Renewal Status", "Email"),
	cells: func(r ExpiryRow) []any {
		return append(activationCells(r.ActivationRow), r.RenewalStatus, r.Email)
	},
	search:    append(liftSearch(expiryBase), func(r ExpiryRow) string { return r.RenewalStatus }),
	status:    func(r ExpiryRow) string { return r.RenewalStatus },
	counselor: func(r ExpiryRow) string { return r.Counselor },
	pkg:       func(r ExpiryRow) string { return r.Package },
	date:      func(r ExpiryRow) *time.Time { return ptr(r.JoiningDate) },
	sorter:    liftSorter(expiryBase),
	stats: func(rows []ExpiryRow) ReportStats {
		return ReportStats{
			"total":      float64(len(rows)),
			"active":     count(rows, func(r ExpiryRow) bool { return r.LeftDays > 0 }),
			"expired":    count(rows, func(r ExpiryRow) bool { return r.LeftDays <= 0 }),
			"renewalDue": count(rows, func(r ExpiryRow) bool { return r.LeftDays > 0 && r.LeftDays <= 30 }),
		}
	},
}

func renewalBase(r RenewalRow) ActivationRow { return r.ActivationRow }

var renewalSchema = reportSchema[RenewalRow]{
	columns: append(append([]string{}, activationColumns...), "Renewal Month"),
	cells: func(r RenewalRow) []any {
		return append(activationCells(r.ActivationRow), r.RenewalMonth)
	},
	search:    append(liftSearch(renewalBase), func(r RenewalRow) string { return r.RenewalMonth }),
	status:    func(r RenewalRow) string { return RenewalStatus(r.LeftDays) },
	counselor: func(r RenewalRow) string { return r.Counselor },
	pkg:       func(r RenewalRow) string { return r.Package },
	date:      func(r RenewalRow) *time.Time { return ptr(r.JoiningDate) },
	sorter:    liftSorter(renewalBase),
	stats: func(rows []RenewalRow) ReportStats {
		return ReportStats{
			"total":     float64(len(rows)),
			"thisMonth": count(rows, func(r RenewalRow) bool { return r.LeftDays > 0 && r.LeftDays <= 30 }),
			"nextMonth": count(rows, func(r RenewalRow) bool { return r.LeftDays > 30 && r.LeftDays <= 60 }),
			"overdue":   count(rows, func(r RenewalRow) bool { return r.LeftDays <= 0 }),
		}
	},
}

var freezingSchema = reportSchema[FreezingRow]{
	columns: []string{"Client Name", "Contact", "Package", "Activation Date", "Frozen Days", "Updated Expiry Date", "Counselor", "Coach", "Reason"},
	cells: func(r FreezingRow) []any {
		return []any{r.ClientName, r.Contact, r.Package, dayCell(r.ActivationDate), r.FrozenDays, dateCell(r.UpdatedExpiryDate), r.Counselor, r.Coach, r.Reason}
	},
	search: []func(FreezingRow) string{
		func(r FreezingRow) string { return r.ClientName },
		func(r FreezingRow) string { return r.Contact },
		func(r FreezingRow) string { return r.Package },
		func(r FreezingRow) string { return r.Counselor },
		func(r FreezingRow) string { return r.Reason },
	},
	status:    func(r FreezingRow) string { return r.Reason },
	counselor: func(r FreezingRow) string { return r.Counselor },
	pkg:       func(r FreezingRow) string { return r.Package },
	date:      func(r FreezingRow) *time.Time { return ptr(r.ActivationDate) },
	sorter: Sorter[FreezingRow]{
		"clientName":        {String: func(r FreezingRow) string { return r.ClientName }},
		"package":           {String: func(r FreezingRow) string { return r.Package }},
		"activationDate":    {Time: func(r FreezingRow) *time.Time { return ptr(r.ActivationDate) }},
		"frozenDays":        {Number: func(r FreezingRow) float64 { return float64(r.FrozenDays) }},
		"updatedExpiryDate": {Time: func(r FreezingRow) *time.Time { return r.UpdatedExpiryDate }},
		"counselor":         {String: func(r FreezingRow) string { return r.Counselor }},
	},
	stats: func(rows []FreezingRow) ReportStats {
		return ReportStats{
			"total":           float64(len(rows)),
			"active":          count(rows, func(r FreezingRow) bool { return r.FrozenDays > 0 }),
			"completed":       count(rows, func(r FreezingRow) bool { return r.Reason == "Processed" }),
			"pending":         count(rows, func(r FreezingRow) bool { return r.Reason == "Pending Review" }),
			"totalFrozenDays": sum(rows, func(r FreezingRow) float64 { return float64(r.FrozenDays) }),
		}
	},
}

var followUpSchema = reportSchema[FollowUpRow]{
	columns: []string{"Name", "Contact", "Counselor", "Last Contact", "Source", "Lead Date", "Status", "Follow Up Date", "Attempts"},
	cells: func(r FollowUpRow) []any {
		return []any{r.Name, r.Contact, r.Counselor, dayCell(r.LastContact), r.Source, dayCell(r.LeadDate), r.Status, dateCell(r.FollowUpDate), r.Attempts}
	},
	search: []func(FollowUpRow) string{
		func(r FollowUpRow) string { return r.Name },
		func(r FollowUpRow) string { return r.Contact },
		func(r FollowUpRow) string { return r.Counselor },
		func(r FollowUpRow) string { return r.Source },
		func(r FollowUpRow) string { return r.Status },
	},
	status:    func(r FollowUpRow) string { return r.Status },
	counselor: func(r FollowUpRow) string { return r.Counselor },
	date:      func(r FollowUpRow) *time.Time { return ptr(r.LeadDate) },
	sorter: Sorter[FollowUpRow]{
		"name":         {String: func(r FollowUpRow) string { return r.Name }},
		"counselor":    {String: func(r FollowUpRow) string { return r.Counselor }},
		"lastContact":  {Time: func(r FollowUpRow) *time.Time { return ptr(r.LastContact) }},
		"leadDate":     {Time: func(r FollowUpRow) *time.Time { return ptr(r.LeadDate) }},
		"status":       {String: func(r FollowUpRow) string { return r.Status }},
		"followUpDate": {Time: func(r FollowUpRow) *time.Time { return r.FollowUpDate }},
		"attempts":     {Number: func(r FollowUpRow) float64 { return float64(r.Attempts) }},
	},
	stats: func(rows []FollowUpRow) ReportStats {
		return ReportStats{
			"total":         float64(len(rows)),
			"done":          count(rows, func(r FollowUpRow) bool { return r.Status == "Done" }),
			"pending":       count(rows, func(r FollowUpRow) bool { return r.Status == "Pending" }),
			"failed":        count(rows, func(r FollowUpRow) bool { return r.Status == "Failed" }),
			"totalAttempts": sum(rows, func(r FollowUpRow) float64 { return float64(r.Attempts) }),
		}
	},
}

func appointmentSchema() reportSchema[AppointmentRow] {
	return reportSchema[AppointmentRow]{
		columns: []string{"Name", "Contact", "Counselor", "BDE", "Source", "Lead Date", "Follow Up Date", "Attempts", "Appointment Status"},
		cells: func(r AppointmentRow) []any {
			return []any{r.Name, r.Contact, r.Counselor, r.BDE, r.Source, dayCell(r.LeadDate), dateCell(r.FollowUpDate), r.Attempts, r.AppointmentStatus}
		},
		search: []func(AppointmentRow) string{
			func(r AppointmentRow) string { return r.Name },
			func(r AppointmentRow) string { return r.Contact },
			func(r AppointmentRow) string { return r.Counselor },
			func(r AppointmentRow) string { return r.BDE },
			func(r AppointmentRow) string { return r.Source },
			func(r AppointmentRow) string { return r.AppointmentStatus },
		},
		status:    func(r AppointmentRow) string { return r.AppointmentStatus },
		counselor: func(r AppointmentRow) string { return r.Counselor },
		date:      func(r AppointmentRow) *time.Time { return ptr(r.LeadDate) },
		sorter: Sorter[AppointmentRow]{
			"name":         {String: func(r AppointmentRow) string { return r.Name }},
			"counselor":    {String: func(r AppointmentRow) string { return r.Counselor }},
			"bde":          {String: func(r AppointmentRow) string { return r.BDE }},
			"leadDate":     {Time: func(r AppointmentRow) *time.Time { return ptr(r.LeadDate) }},
			"followUpDate": {Time: func(r AppointmentRow) *time.Time { return r.FollowUpDate }},
			"attempts":     {Number: func(r AppointmentRow) float64 { return float64(r.Attempts) }},
		},
		stats: func(rows []AppointmentRow) ReportStats {
			return ReportStats{
				"total":         float64(len(rows)),
				"successful":    count(rows, func(r AppointmentRow) bool { return r.AppointmentStatus == "Successful" }),
				"failed":        count(rows, func(r AppointmentRow) bool { return r.AppointmentStatus == "Failed" }),
				"scheduled":     count(rows, func(r AppointmentRow) bool { return r.AppointmentStatus == "Scheduled" }),
				"totalAttempts": sum(rows, func(r AppointmentRow) float64 { return float64(r.Attempts) }),
			}
		},
	}
}

func referralSchema(b *ReportBuilder) reportSchema[ReferralRow] {
	return reportSchema[ReferralRow]{
		columns: []string{"Name", "Contact", "Referred By", "Referrer Contact", "Counselor", "Lead Date", "Lead Status", "Follow Up Date"},
		cells: func(r ReferralRow) []any {
			return []any{r.Name, r.Contact, r.ReferredBy, r.ReferrerContact, r.Counselor, dayCell(r.LeadDate), r.LeadStatus, dateCell(r.FollowUpDate)}
		},
		search: []func(ReferralRow) string{
			func(r ReferralRow) string { return r.Name },
			func(r ReferralRow) string { return r.Contact },
			func(r ReferralRow) string { return r.Counselor },
			func(r ReferralRow) string { return r.ReferredBy },
			func(r ReferralRow) string { return r.LeadStatus },
		},
		status:    func(r ReferralRow) string { return r.LeadStatus },
		counselor: func(r ReferralRow) string { return r.Counselor },
		date:      func(r ReferralRow) *time.Time { return ptr(r.LeadDate) },
		sorter: Sorter[ReferralRow]{
			"name":         {String: func(r ReferralRow) string { return r.Name }},
			"referredBy":   {String: func(r ReferralRow) string { return r.ReferredBy }},
			"counselor":    {String: func(r ReferralRow) string { return r.Counselor }},
			"leadDate":     {Time: func(r ReferralRow) *time.Time { return ptr(r.LeadDate) }},
			"leadStatus":   {String: func(r ReferralRow) string { return r.LeadStatus }},
			"followUpDate": {Time: func(r ReferralRow) *time.Time { return r.FollowUpDate }},
		},
		stats: func(rows []ReferralRow) ReportStats {
			referrers := make(map[string]struct{})
			for _, r := range rows {
				referrers[r.ReferredBy] = struct{}{}
			}
			return ReportStats{
				"total":     float64(len(rows)),
				"converted": count(rows, func(r ReferralRow) bool { return r.LeadStatus == b.Vocab.Converted }),
				"pending": count(rows, func(r ReferralRow) bool {
					return r.LeadStatus == "New" || strings.EqualFold(r.LeadStatus, "Contacted")
				}),
				"lost":            count(rows, func(r ReferralRow) bool { return b.Vocab.IsLost(r.LeadStatus) }),
				"uniqueReferrers": float64(len(referrers)),
			}
		},
	}
}
