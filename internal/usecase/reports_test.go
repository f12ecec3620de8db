package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/coach-crm/internal/entity"
)

func onDay(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestBuilder() *ReportBuilder {
	b := NewReportBuilder(entity.DefaultStatusVocabulary())
	b.Now = fixedNow
	return b
}

// reportSnapshot: Priya is a paying client with a coach, Ravi and Kiran are referral leads.
func reportSnapshot() Snapshot {
	return Snapshot{
		Users: []entity.User{
			{ID: "u-client1", FirstName: "Priya", LastName: "Sharma", Email: "Priya@Example.com", Phone: "9000000001", CreatedAt: onDay(time.January, 10)},
			{ID: "u-coach", FirstName: "Anil", LastName: "Kumar", Email: "anil@coach.in"},
			{ID: "u-asha", FirstName: "Asha", LastName: "Verma", Email: "asha@mail.in", Phone: "9111"},
		},
		Coaches: []entity.CoachAssignment{
			{ClientID: "u-client1", CoachID: "u-coach", Status: "active"},
		},
		Leads: []entity.Lead{
			{
				ID: "l1", Name: "Priya", Email: "priya@example.com", Phone: "9000000001", City: "Pune",
				Status: "New", Source: strPtr("Instagram"), Counselor: strPtr("Rohit"), LeadScore: 3,
				FollowUpDate: timePtr(onDay(time.October, 25)), CreatedAt: onDay(time.January, 5),
			},
			{
				ID: "l2", Name: "Ravi", Status: "Hot", Source: strPtr("referral-Asha-campaign"),
				CreatedAt: onDay(time.February, 1),
			},
			{
				ID: "l3", Name: "Kiran", Phone: "9222", Status: "Lost(Irrelevant)", Source: strPtr("Referral"),
				Notes: "Referred by Meera at gym", CreatedAt: onDay(time.March, 1),
			},
		},
		Payments: []entity.Payment{
			{
				ID: "p1", LeadID: strPtr("l1"), Amount: 5000, Status: entity.PaymentStatusCompleted, Plan: "Gold",
				CreatedAt: onDay(time.January, 6), PaymentDate: timePtr(onDay(time.January, 6)), PlanExpiry: timePtr(onDay(time.October, 30)),
			},
			{
				ID: "p2", LeadID: strPtr("l1"), Amount: 2000, Status: entity.PaymentStatusPending, Plan: "Gold",
				BillType: entity.BillTypeRenewal, CreatedAt: onDay(time.October, 1), DueDate: timePtr(onDay(time.October, 10)),
			},
			{
				ID: "p3", Amount: 100, Status: entity.PaymentStatusCompleted, CreatedAt: onDay(time.September, 2),
			},
		},
		Events: []entity.StatusEvent{
			{ID: "e1", LeadID: "l2", Status: "Hot", FollowUpDate: timePtr(onDay(time.October, 3)), CreatedAt: onDay(time.October, 1)},
			{ID: "e2", LeadID: "l2", Status: "Converted", FollowUpDate: timePtr(onDay(time.October, 20)), CreatedAt: onDay(time.October, 5)},
		},
		Freezes: []entity.MembershipFreeze{
			{ID: "f1", UserID: "u-client1", FreezeStart: onDay(time.June, 1), FreezeEnd: onDay(time.June, 15), Processed: true},
			{ID: "f2", UserID: "u-ghost", FreezeStart: onDay(time.June, 1), FreezeEnd: onDay(time.June, 2)},
		},
	}
}

func TestRenewalStatus(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{-4, RenewalExpired},
		{0, RenewalExpired},
		{1, RenewalDue},
		{30, RenewalDue},
		{31, RenewalUpcoming},
		{60, RenewalUpcoming},
		{61, RenewalActive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RenewalStatus(tt.days), "days=%d", tt.days)
	}
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 11, DaysUntil(onDay(time.October, 30), testNow))
	assert.Equal(t, -9, DaysUntil(onDay(time.October, 10), testNow))
	assert.Equal(t, 0, DaysUntil(testNow, testNow))
	assert.Equal(t, 1, DaysUntil(testNow.Add(time.Hour), testNow))
}

func TestReferrerOf(t *testing.T) {
	tests := []struct {
		name string
		lead entity.Lead
		want string
	}{
		{"notes win", entity.Lead{Notes: "Referred by Meera at gym", Source: strPtr("referral-Asha-x")}, "Meera"},
		{"notes case", entity.Lead{Notes: "REFERRED BY sam"}, "sam"},
		{"source segment", entity.Lead{Source: strPtr("Referral-Asha-campaign")}, "Asha"},
		{"source without trailer", entity.Lead{Source: strPtr("referral-Asha")}, "Asha"},
		{"empty notes match falls back to source", entity.Lead{Notes: "referred by", Source: strPtr("referral-Joy-1")}, "Joy"},
		{"nothing", entity.Lead{Source: strPtr("Referral")}, "Unknown"},
		{"no source", entity.Lead{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReferrerOf(tt.lead))
		})
	}
}

func TestParseReportKind(t *testing.T) {
	k, ok := ParseReportKind(" Balance ")
	assert.True(t, ok)
	assert.Equal(t, ReportBalance, k)

	_, ok = ParseReportKind("payroll")
	assert.False(t, ok)
	assert.Len(t, ReportKinds, 9)
}

func TestBalanceReport(t *testing.T) {
	rows := newTestBuilder().Balance(reportSnapshot())
	require.Len(t, rows, 3)

	priya := rows[0]
	assert.Equal(t, "Priya Sharma", priya.ClientName)
	assert.Equal(t, "9000000001", priya.Contact)
	assert.Equal(t, "Gold", priya.Package)
	assert.Equal(t, 7000.0, priya.TotalAmount)
	assert.Equal(t, 5000.0, priya.AmountPaid)
	assert.Equal(t, 2000.0, priya.Balance)
	require.NotNil(t, priya.DueDate)
	assert.Equal(t, -9, priya.DueDays)
	assert.Equal(t, "Rohit", priya.Counselor)
	assert.Equal(t, "Anil Kumar", priya.Coach)

	ravi := rows[1]
	assert.Equal(t, "Ravi", ravi.ClientName)
	assert.Equal(t, "N/A", ravi.Contact)
	assert.Equal(t, "No Package", ravi.Package)
	assert.Equal(t, "Unassigned", ravi.Counselor)
	assert.Equal(t, "Not Assigned", ravi.Coach)
	assert.Nil(t, ravi.DueDate)
}

func TestSalesReport(t *testing.T) {
	rows := newTestBuilder().Sales(reportSnapshot())
	require.Len(t, rows, 2)

	assert.Equal(t, SalesRow{
		ID:            "p1",
		Date:          onDay(time.January, 6),
		ClientName:    "Priya Sharma",
		Contact:       "9000000001",
		Package:       "Gold",
		Amount:        5000,
		UpsellRenewal: "New",
		Counselor:     "Rohit",
		Balance:       2000,
		City:          "Pune",
		Source:        "Instagram",
	}, rows[0])

	orphan := rows[1]
	assert.Equal(t, "Unknown", orphan.ClientName)
	assert.Equal(t, "N/A", orphan.Contact)
	assert.Equal(t, "Standard", orphan.Package)
	assert.Equal(t, "Unassigned", orphan.Counselor)
	assert.Equal(t, onDay(time.September, 2), orphan.Date)
}

func TestActivationExpiryAndRenewalReports(t *testing.T) {
	b := newTestBuilder()
	snap := reportSnapshot()

	activation := b.Activation(snap)
	require.Len(t, activation, 1)
	assert.Equal(t, "l1", activation[0].ID)
	assert.Equal(t, onDay(time.January, 10), activation[0].JoiningDate)
	assert.Equal(t, onDay(time.January, 6), activation[0].ActivationDate)
	assert.Equal(t, 11, activation[0].LeftDays)
	assert.Equal(t, "Anil Kumar", activation[0].Coach)

	expiry := b.Expiry(snap)
	require.Len(t, expiry, 1)
	assert.Equal(t, RenewalDue, expiry[0].RenewalStatus)
	assert.Equal(t, "priya@example.com", expiry[0].Email)

	renewal := b.Renewal(snap)
	require.Len(t, renewal, 1)
	assert.Equal(t, "l1_p1", renewal[0].ID)
	assert.Equal(t, "l1", renewal[0].LeadID)
	assert.Equal(t, "p1", renewal[0].PaymentID)
	assert.Equal(t, "10/2026", renewal[0].RenewalMonth)

	// a month later the plan is no longer in the renewal window
	b.Now = func() time.Time { return testNow.AddDate(0, 1, 0) }
	assert.Empty(t, b.Renewal(snap))
	assert.Equal(t, RenewalExpired, b.Expiry(snap)[0].RenewalStatus)
}

func TestFreezingReport(t *testing.T) {
	b := newTestBuilder()
	snap := reportSnapshot()

	rows := b.Freezing(snap, FullScope())
	require.Len(t, rows, 1)
	assert.Equal(t, FreezingRow{
		ID:             "f1",
		ClientName:     "Priya Sharma",
		Contact:        "9000000001",
		Package:        "Standard",
		ActivationDate: onDay(time.January, 10),
		FrozenDays:     14,
		Counselor:      "Rohit",
		Coach:          "Anil Kumar",
		Reason:         "Processed",
	}, rows[0])

	scope := NewScope("l2")
	assert.Empty(t, b.Freezing(snap.Scoped(scope), scope))
}

func TestFollowUpReport(t *testing.T) {
	rows := newTestBuilder().FollowUp(reportSnapshot())
	require.Len(t, rows, 2)

	assert.Equal(t, "l1", rows[0].ID)
	assert.Equal(t, "Pending", rows[0].Status)
	assert.Equal(t, 3, rows[0].Attempts)

	assert.Equal(t, "l2", rows[1].ID)
	assert.Equal(t, "Done", rows[1].Status)
	assert.Equal(t, onDay(time.October, 20), *rows[1].FollowUpDate)
	assert.Equal(t, 1, rows[1].Attempts)
}

func TestAppointmentsReport(t *testing.T) {
	rows := newTestBuilder().Appointments(reportSnapshot())
	require.Len(t, rows, 3)

	assert.Equal(t, "Scheduled", rows[0].AppointmentStatus)
	assert.Equal(t, "Priya Sharma", rows[0].BDE)
	assert.Equal(t, "Successful", rows[1].AppointmentStatus)
	assert.Equal(t, "N/A", rows[1].BDE)
	assert.Equal(t, "Failed", rows[2].AppointmentStatus)
}

func TestReferralReport(t *testing.T) {
	rows := newTestBuilder().Referral(reportSnapshot())
	require.Len(t, rows, 2)

	assert.Equal(t, "l2", rows[0].ID)
	assert.Equal(t, "Asha", rows[0].ReferredBy)
	assert.Equal(t, "9111", rows[0].ReferrerContact)
	assert.Equal(t, "Converted", rows[0].LeadStatus)

	assert.Equal(t, "l3", rows[1].ID)
	assert.Equal(t, "Meera", rows[1].ReferredBy)
	assert.Equal(t, "N/A", rows[1].ReferrerContact)
	assert.Equal(t, "Lost(Irrelevant)", rows[1].LeadStatus)
	assert.Equal(t, "9222", rows[1].Contact)
}

func TestBuildAppliesFiltersAndStats(t *testing.T) {
	b := newTestBuilder()
	snap := reportSnapshot()

	result, err := b.Build(snap, FullScope(), ReportQuery{Kind: ReportBalance, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 2, result.TotalPages)
	assert.Len(t, result.Items.([]BalanceRow), 2)
	assert.Len(t, result.Rows, 3)
	assert.Equal(t, balanceSchema.columns, result.Columns)
	assert.Equal(t, ReportStats{
		"total":        3,
		"paid":         2,
		"pending":      1,
		"totalBalance": 2000,
		"overdue":      1,
	}, result.Stats)

	pending, err := b.Build(snap, FullScope(), ReportQuery{Kind: ReportBalance, Status: []string{"Pending"}})
	require.NoError(t, err)
	items := pending.Items.([]BalanceRow)
	require.Len(t, items, 1)
	assert.Equal(t, "l1", items[0].ID)
	// stats describe the unfiltered report
	assert.Equal(t, 3.0, pending.Stats["total"])

	sorted, err := b.Build(snap, FullScope(), ReportQuery{
		Kind: ReportBalance,
		Sort: SortState{Field: "clientName", Direction: SortAsc},
	})
	require.NoError(t, err)
	assert.Equal(t, "Kiran", sorted.Items.([]BalanceRow)[0].ClientName)
	assert.Equal(t, "Kiran", sorted.Rows[0][0])
}

func TestBuildSearchAndRange(t *testing.T) {
	b := newTestBuilder()
	from := onDay(time.February, 1)

	result, err := b.Build(reportSnapshot(), FullScope(), ReportQuery{
		Kind:  ReportAppointments,
		Range: DateRange{From: &from},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)

	result, err = b.Build(reportSnapshot(), FullScope(), ReportQuery{Kind: ReportReferral, Search: "meera"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
}

func TestBuildUnknownKind(t *testing.T) {
	_, err := newTestBuilder().Build(Snapshot{}, FullScope(), ReportQuery{Kind: "payroll"})
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeInvalidReport, de.Code)
}

func TestBuildEveryKindOnEmptySnapshot(t *testing.T) {
	b := newTestBuilder()
	for _, kind := range ReportKinds {
		result, err := b.Build(Snapshot{}, FullScope(), ReportQuery{Kind: kind})
		require.NoError(t, err, kind)
		assert.Equal(t, 0, result.TotalCount, kind)
		assert.Equal(t, 1, result.TotalPages, kind)
		assert.NotEmpty(t, result.Columns, kind)
		assert.Equal(t, 0.0, result.Stats["total"], kind)
	}
}
