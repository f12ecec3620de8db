package usecase

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/xavierca1/coach-crm/internal/entity"
)

type ReportKind string

const (
	ReportBalance      ReportKind = "balance"
	ReportSales        ReportKind = "sales"
	ReportActivation   ReportKind = "activation"
	ReportExpiry       ReportKind = "expiry"
	ReportRenewal      ReportKind = "renewal"
	ReportFreezing     ReportKind = "freezing"
	ReportFollowUp     ReportKind = "followup"
	ReportAppointments ReportKind = "appointments"
	ReportReferral     ReportKind = "referral"
)

var ReportKinds = []ReportKind{
	ReportBalance, ReportSales, ReportActivation, ReportExpiry, ReportRenewal,
	ReportFreezing, ReportFollowUp, ReportAppointments, ReportReferral,
}

func ParseReportKind(s string) (ReportKind, bool) {
	for _, k := range ReportKinds {
		if string(k) == strings.ToLower(strings.TrimSpace(s)) {
			return k, true
		}
	}
	return "", false
}

const (
	notAssigned = "Not Assigned"
	unassigned  = "Unassigned"
	notSet      = "Not Set"
	notAvail    = "N/A"
	unknown     = "Unknown"
	standardPkg = "Standard"
	noPackage   = "No Package"
)

const (
	RenewalExpired  = "Expired"
	RenewalDue      = "Renewal Due"
	RenewalUpcoming = "Upcoming Renewal"
	RenewalActive   = "Active"
)

// RenewalStatus buckets the days left on a plan.
func RenewalStatus(leftDays int) string {
	switch {
	case leftDays <= 0:
		return RenewalExpired
	case leftDays <= 30:
		return RenewalDue
	case leftDays <= 60:
		return RenewalUpcoming
	}
	return RenewalActive
}

// DaysUntil is ceil((t - now) / 1 day) and is negative once t has passed.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

type BalanceRow struct {
	ID          string     `json:"id"`
	ClientName  string     `json:"client_name"`
	Contact     string     `json:"contact"`
	Email       string     `json:"email"`
	Package     string     `json:"package"`
	TotalAmount float64    `json:"total_amount"`
	AmountPaid  float64    `json:"amount_paid"`
	Balance     float64    `json:"balance"`
	DueDate     *time.Time `json:"due_date"`
	DueDays     int        `json:"due_days"`
	Counselor   string     `json:"counselor"`
	Coach       string     `json:"coach"`
	LeadDate    time.Time  `json:"lead_date"`
}

type SalesRow struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	ClientName    string    `json:"client_name"`
	Contact       string    `json:"contact"`
	Package       string    `json:"package"`
	Amount        float64   `json:"amount"`
	UpsellRenewal string    `json:"upsell_renewal"`
	Counselor     string    `json:"counselor"`
	Balance       float64   `json:"balance"`
	City          string    `json:"city"`
	Source        string    `json:"source"`
}

type ActivationRow struct {
	ID             string     `json:"id"`
	ClientName     string     `json:"client_name"`
	Contact        string     `json:"contact"`
	Package        string     `json:"package"`
	JoiningDate    time.Time  `json:"joining_date"`
	ActivationDate time.Time  `json:"activation_date"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	LeftDays       int        `json:"left_days"`
	Counselor      string     `json:"counselor"`
	Coach          string     `json:"coach"`
}

type ExpiryRow struct {
	ActivationRow
	RenewalStatus string `json:"renewal_status"`
	Email         string `json:"email"`
}

type RenewalRow struct {
	ActivationRow
	LeadID       string `json:"lead_id"`
	PaymentID    string `json:"payment_id"`
	RenewalMonth string `json:"renewal_month"`
}

type FreezingRow struct {
	ID                string     `json:"id"`
	ClientName        string     `json:"client_name"`
	Contact           string     `json:"contact"`
	Package           string     `json:"package"`
	ActivationDate    time.Time  `json:"activation_date"`
	FrozenDays        int        `json:"frozen_days"`
	UpdatedExpiryDate *time.Time `json:"updated_expiry_date"`
	Counselor         string     `json:"counselor"`
	Coach             string     `json:"coach"`
	Reason            string     `json:"reason"`
}

type FollowUpRow struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Contact      string     `json:"contact"`
	Counselor    string     `json:"counselor"`
	LastContact  time.Time  `json:"last_contact"`
	Source       string     `json:"source"`
	LeadDate     time.Time  `json:"lead_date"`
	Status       string     `json:"status"`
	FollowUpDate *time.Time `json:"follow_up_date"`
	Attempts     int        `json:"attempts"`
}

type AppointmentRow struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Contact           string     `json:"contact"`
	Counselor         string     `json:"counselor"`
	BDE               string     `json:"bde"`
	Source            string     `json:"source"`
	LeadDate          time.Time  `json:"lead_date"`
	FollowUpDate      *time.Time `json:"follow_up_date"`
	Attempts          int        `json:"attempts"`
	AppointmentStatus string     `json:"appointment_status"`
}

type ReferralRow struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Contact         string     `json:"contact"`
	ReferredBy      string     `json:"referred_by"`
	ReferrerContact string     `json:"referrer_contact"`
	Counselor       string     `json:"counselor"`
	LeadDate        time.Time  `json:"lead_date"`
	LeadStatus      string     `json:"lead_status"`
	FollowUpDate    *time.Time `json:"follow_up_date"`
}

// ReportBuilder joins a scoped snapshot into report rows. It never fails on missing fields:
// every absent value is replaced by a placeholder.
type ReportBuilder struct {
	Now   func() time.Time
	Vocab entity.StatusVocabulary
}

func NewReportBuilder(vocab entity.StatusVocabulary) *ReportBuilder {
	return &ReportBuilder{Now: time.Now, Vocab: vocab}
}

// joinIndex is built once per snapshot so rows do not rescan the collections.
type joinIndex struct {
	snap          Snapshot
	usersByID     map[string]*entity.User
	coachOf       map[string]string
	paymentsBy    map[string][]entity.Payment
	latestEventBy map[string]*entity.StatusEvent
}

func newJoinIndex(snap Snapshot) *joinIndex {
	idx := &joinIndex{
		snap:          snap,
		usersByID:     make(map[string]*entity.User, len(snap.Users)),
		coachOf:       make(map[string]string, len(snap.Coaches)),
		paymentsBy:    make(map[string][]entity.Payment),
		latestEventBy: make(map[string]*entity.StatusEvent),
	}
	for i := range snap.Users {
		idx.usersByID[snap.Users[i].ID] = &snap.Users[i]
	}
	for _, c := range snap.Coaches {
		if c.Status == "" || strings.EqualFold(c.Status, "active") {
			idx.coachOf[c.ClientID] = c.CoachID
		}
	}
	for _, p := range snap.Payments {
		if p.LeadID != nil {
			idx.paymentsBy[*p.LeadID] = append(idx.paymentsBy[*p.LeadID], p)
		}
	}
	for i := range snap.Events {
		e := &snap.Events[i]
		if cur, ok := idx.latestEventBy[e.LeadID]; !ok || e.CreatedAt.After(cur.CreatedAt) {
			idx.latestEventBy[e.LeadID] = e
		}
	}
	return idx
}

func (idx *joinIndex) coachName(user *entity.User) string {
	if user == nil {
		return notAssigned
	}
	coachID, ok := idx.coachOf[user.ID]
	if !ok {
		return notAssigned
	}
	if coach, ok := idx.usersByID[coachID]; ok && coach.FullName() != "" {
		return coach.FullName()
	}
	return notAssigned
}

// status prefers the latest status event over the cached lead status.
func (idx *joinIndex) status(lead entity.Lead) string {
	if e, ok := idx.latestEventBy[lead.ID]; ok && e.Status != "" {
		return e.Status
	}
	return lead.Status
}

func (idx *joinIndex) followUpDate(lead entity.Lead) *time.Time {
	if lead.FollowUpDate != nil {
		return lead.FollowUpDate
	}
	if e, ok := idx.latestEventBy[lead.ID]; ok {
		return e.FollowUpDate
	}
	return nil
}

func clientName(user *entity.User, lead *entity.Lead) string {
	if user != nil && user.FullName() != "" {
		return user.FullName()
	}
	if lead != nil && strings.TrimSpace(lead.Name) != "" {
		return lead.Name
	}
	return unknown
}

func contactOf(lead *entity.Lead, user *entity.User) string {
	if lead != nil && lead.Phone != "" {
		return lead.Phone
	}
	if user != nil && user.Phone != "" {
		return user.Phone
	}
	return notAvail
}

func emailOf(lead entity.Lead, user *entity.User) string {
	if lead.Email != "" {
		return lead.Email
	}
	if user != nil {
		return user.Email
	}
	return ""
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func sortedByCreated(payments []entity.Payment, newestFirst bool) []entity.Payment {
	out := make([]entity.Payment, len(payments))
	copy(out, payments)
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func completedOnly(payments []entity.Payment) []entity.Payment {
	var out []entity.Payment
	for _, p := range payments {
		if p.IsCompleted() {
			out = append(out, p)
		}
	}
	return out
}

func totals(payments []entity.Payment) (total, paid float64) {
	for _, p := range payments {
		total += p.Amount
		if p.IsCompleted() {
			paid += p.Amount
		}
	}
	return total, paid
}

func (b *ReportBuilder) Balance(snap Snapshot) []BalanceRow {
	idx := newJoinIndex(snap)
	now := b.Now()
	rows := make([]BalanceRow, 0, len(snap.Leads))

	for i := range snap.Leads {
		lead := snap.Leads[i]
		user := ResolveUserForLead(lead, snap.Users)
		payments := idx.paymentsBy[lead.ID]
		total, paid := totals(payments)

		row := BalanceRow{
			ID:          lead.ID,
			ClientName:  clientName(user, &lead),
			Contact:     contactOf(&lead, user),
			Email:       emailOf(lead, user),
			Package:     noPackage,
			TotalAmount: total,
			AmountPaid:  paid,
			Balance:     total - paid,
			Counselor:   lead.CounselorOr(unassigned),
			Coach:       idx.coachName(user),
			LeadDate:    lead.CreatedAt,
		}

		if len(payments) > 0 {
			latest := sortedByCreated(payments, true)[0]
			row.Package = orDefault(latest.Plan, noPackage)
			row.DueDate = latest.DueDate
			if row.DueDate == nil {
				row.DueDate = latest.ExpiresAt
			}
			if row.DueDate != nil {
				row.DueDays = DaysUntil(*row.DueDate, now)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func upsellRenewal(billType string) string {
	switch strings.ToLower(billType) {
	case entity.BillTypeRenewal:
		return "Renewal"
	case entity.BillTypeUpsell:
		return "Upsell"
	}
	return "New"
}

func (b *ReportBuilder) Sales(snap Snapshot) []SalesRow {
	idx := newJoinIndex(snap)
	leadsByID := make(map[string]*entity.Lead, len(snap.Leads))
	for i := range snap.Leads {
		leadsByID[snap.Leads[i].ID] = &snap.Leads[i]
	}

	var rows []SalesRow
	for _, p := range snap.Payments {
		if !p.IsCompleted() {
			continue
		}

		var lead *entity.Lead
		if p.LeadID != nil {
			lead = leadsByID[*p.LeadID]
		}
		var user *entity.User
		if p.UserID != nil {
			user = idx.usersByID[*p.UserID]
		}
		if user == nil && lead != nil {
			user = ResolveUserForLead(*lead, snap.Users)
		}

		balance := 0.0
		if p.LeadID != nil {
			total, paid := totals(idx.paymentsBy[*p.LeadID])
			balance = total - paid
		}

		row := SalesRow{
			ID:            p.ID,
			Date:          p.EffectiveDate(),
			ClientName:    clientName(user, lead),
			Contact:       contactOf(lead, user),
			Package:       orDefault(p.Plan, standardPkg),
			Amount:        p.Amount,
			UpsellRenewal: upsellRenewal(p.BillType),
			Counselor:     unassigned,
			Balance:       balance,
			City:          notAvail,
			Source:        unknown,
		}
		if lead != nil {
			row.Counselor = lead.CounselorOr(unassigned)
			row.City = orDefault(lead.City, notAvail)
			row.Source = lead.SourceOr(unknown)
		}
		rows = append(rows, row)
	}
	return rows
}

func (b *ReportBuilder) activationRow(idx *joinIndex, lead entity.Lead, user *entity.User, p entity.Payment, now time.Time) ActivationRow {
	joined := lead.CreatedAt
	if user != nil && !user.CreatedAt.IsZero() {
		joined = user.CreatedAt
	}
	row := ActivationRow{
		ID:             lead.ID,
		ClientName:     clientName(user, &lead),
		Contact:        contactOf(&lead, user),
		Package:        orDefault(p.Plan, standardPkg),
		JoiningDate:    joined,
		ActivationDate: p.EffectiveDate(),
		ExpiryDate:     p.PlanExpiry,
		Counselor:      lead.CounselorOr(unassigned),
		Coach:          idx.coachName(user),
	}
	if p.PlanExpiry != nil {
		row.LeftDays = DaysUntil(*p.PlanExpiry, now)
	}
	return row
}

// Activation emits one row per lead with a completed payment, built from the first one.
func (b *ReportBuilder) Activation(snap Snapshot) []ActivationRow {
	idx := newJoinIndex(snap)
	now := b.Now()
	var rows []ActivationRow

	for _, lead := range snap.Leads {
		completed := completedOnly(idx.paymentsBy[lead.ID])
		if len(completed) == 0 {
			continue
		}
		first := sortedByCreated(completed, false)[0]
		user := ResolveUserForLead(lead, snap.Users)
		rows = append(rows, b.activationRow(idx, lead, user, first, now))
	}
	return rows
}

// Expiry uses the latest completed payment that carries a plan expiry.
func (b *ReportBuilder) Expiry(snap Snapshot) []ExpiryRow {
	idx := newJoinIndex(snap)
	now := b.Now()
	var rows []ExpiryRow

	for _, lead := range snap.Leads {
		var withExpiry []entity.Payment
		for _, p := range completedOnly(idx.paymentsBy[lead.ID]) {
			if p.PlanExpiry != nil {
				withExpiry = append(withExpiry, p)
			}
		}
		if len(withExpiry) == 0 {
			continue
		}
		latest := sortedByCreated(withExpiry, true)[0]
		user := ResolveUserForLead(lead, snap.Users)
		base := b.activationRow(idx, lead, user, latest, now)

		rows = append(rows, ExpiryRow{
			ActivationRow: base,
			RenewalStatus: RenewalStatus(base.LeftDays),
			Email:         emailOf(lead, user),
		})
	}
	return rows
}

// Renewal lists every completed payment whose plan expires in the current calendar month.
func (b *ReportBuilder) Renewal(snap Snapshot) []RenewalRow {
	idx := newJoinIndex(snap)
	now := b.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)
	month := monthLabel(now)

	var rows []RenewalRow
	for _, lead := range snap.Leads {
		user := ResolveUserForLead(lead, snap.Users)
		for _, p := range completedOnly(idx.paymentsBy[lead.ID]) {
			if p.PlanExpiry == nil || p.PlanExpiry.Before(monthStart) || !p.PlanExpiry.Before(nextMonth) {
				continue
			}
			base := b.activationRow(idx, lead, user, p, now)
			base.ID = lead.ID + "_" + p.ID
			rows = append(rows, RenewalRow{
				ActivationRow: base,
				LeadID:        lead.ID,
				PaymentID:     p.ID,
				RenewalMonth:  month,
			})
		}
	}
	return rows
}

func monthLabel(t time.Time) string {
	return t.Format("1/2006")
}

// Freezing requires the freeze's user to exist. Restricted scopes also require the user to
// map onto a visible lead.
func (b *ReportBuilder) Freezing(snap Snapshot, scope Scope) []FreezingRow {
	idx := newJoinIndex(snap)
	var rows []FreezingRow

	for _, f := range snap.Freezes {
		user, ok := idx.usersByID[f.UserID]
		if !ok {
			continue
		}
		lead := ResolveLeadForUser(*user, snap.Leads)
		if !scope.All && (lead == nil || !scope.Allows(lead.ID)) {
			continue
		}

		counselor := unassigned
		if lead != nil {
			counselor = lead.CounselorOr(unassigned)
		}
		reason := "Pending Review"
		if f.Processed {
			reason = "Processed"
		}

		rows = append(rows, FreezingRow{
			ID:                f.ID,
			ClientName:        clientName(user, lead),
			Contact:           orDefault(user.Phone, notAvail),
			Package:           orDefault(f.PlanType, standardPkg),
			ActivationDate:    user.CreatedAt,
			FrozenDays:        int(math.Ceil(f.FreezeEnd.Sub(f.FreezeStart).Hours() / 24)),
			UpdatedExpiryDate: f.NewExpiry,
			Counselor:         counselor,
			Coach:             idx.coachName(user),
			Reason:            reason,
		})
	}
	return rows
}

func attempts(lead entity.Lead) int {
	if lead.LeadScore > 0 {
		return lead.LeadScore
	}
	return 1
}

// FollowUp emits a row for each lead with a follow-up date.
func (b *ReportBuilder) FollowUp(snap Snapshot) []FollowUpRow {
	idx := newJoinIndex(snap)
	var rows []FollowUpRow

	for _, lead := range snap.Leads {
		followUp := idx.followUpDate(lead)
		if followUp == nil {
			continue
		}
		status := idx.status(lead)
		outcome := "Pending"
		switch {
		case status == b.Vocab.Converted:
			outcome = "Done"
		case b.Vocab.IsLost(status):
			outcome = "Failed"
		}

		lastContact := lead.CreatedAt
		if lead.LastActivityAt != nil {
			lastContact = *lead.LastActivityAt
		}

		rows = append(rows, FollowUpRow{
			ID:           lead.ID,
			Name:         orDefault(lead.Name, unknown),
			Contact:      orDefault(lead.Phone, notAvail),
			Counselor:    lead.CounselorOr(unassigned),
			LastContact:  lastContact,
			Source:       lead.SourceOr(unknown),
			LeadDate:     lead.CreatedAt,
			Status:       outcome,
			FollowUpDate: followUp,
			Attempts:     attempts(lead),
		})
	}
	return rows
}

func (b *ReportBuilder) Appointments(snap Snapshot) []AppointmentRow {
	idx := newJoinIndex(snap)
	rows := make([]AppointmentRow, 0, len(snap.Leads))

	for _, lead := range snap.Leads {
		status := idx.status(lead)
		outcome := "Scheduled"
		switch {
		case status == b.Vocab.Converted:
			outcome = "Successful"
		case b.Vocab.IsLost(status):
			outcome = "Failed"
		}

		rows = append(rows, AppointmentRow{
			ID:                lead.ID,
			Name:              orDefault(lead.Name, unknown),
			Contact:           orDefault(lead.Phone, notAvail),
			Counselor:         lead.CounselorOr(unassigned),
			BDE:               bdeFor(lead, snap.Users),
			Source:            lead.SourceOr(unknown),
			LeadDate:          lead.CreatedAt,
			FollowUpDate:      idx.followUpDate(lead),
			Attempts:          attempts(lead),
			AppointmentStatus: outcome,
		})
	}
	return rows
}

// bdeFor finds the business development executive by lead email, then by counselor name.
func bdeFor(lead entity.Lead, users []entity.User) string {
	if lead.Email != "" {
		for _, u := range users {
			if strings.EqualFold(u.Email, lead.Email) {
				return u.FullName()
			}
		}
	}
	if counselor := lead.CounselorOr(""); counselor != "" {
		for _, u := range users {
			if strings.EqualFold(u.FullName(), strings.TrimSpace(counselor)) {
				return u.FullName()
			}
		}
	}
	return notAvail
}

var referredByPattern = regexp.MustCompile(`(?i)referred by\s*(\S*)`)

// ReferrerOf reads the referrer from "referred by X" in the notes or a "referral-X-..." source.
func ReferrerOf(lead entity.Lead) string {
	if m := referredByPattern.FindStringSubmatch(lead.Notes); m != nil && m[1] != "" {
		return m[1]
	}
	source := lead.SourceOr("")
	if i := strings.Index(strings.ToLower(source), "referral-"); i >= 0 {
		rest := source[i+len("referral-"):]
		if name := strings.SplitN(rest, "-", 2)[0]; name != "" {
			return name
		}
	}
	return unknown
}

func (b *ReportBuilder) Referral(snap Snapshot) []ReferralRow {
	idx := newJoinIndex(snap)
	var rows []ReferralRow

	for _, lead := range snap.Leads {
		if !strings.Contains(strings.ToLower(lead.SourceOr("")), "referral") {
			continue
		}
		referredBy := ReferrerOf(lead)
		contact := notAvail
		if referredBy != unknown {
			needle := strings.ToLower(referredBy)
			for _, u := range snap.Users {
				if strings.Contains(strings.ToLower(u.FirstName), needle) ||
					strings.Contains(strings.ToLower(u.LastName), needle) ||
					strings.Contains(strings.ToLower(u.Email), needle) {
					contact = orDefault(u.Phone, notAvail)
					break
				}
			}
		}

		rows = append(rows, ReferralRow{
			ID:              lead.ID,
			Name:            orDefault(lead.Name, unknown),
			Contact:         orDefault(lead.Phone, notAvail),
			ReferredBy:      referredBy,
			ReferrerContact: contact,
			Counselor:       lead.CounselorOr(unassigned),
			LeadDate:        lead.CreatedAt,
			LeadStatus:      orDefault(idx.status(lead), "New"),
			FollowUpDate:    idx.followUpDate(lead),
		})
	}
	return rows
}
