package usecase

import (
	"time"

	"github.com/xavierca1/coach-crm/internal/entity"
)

// Metrics are full-precision percentages. Round only when presenting them.
type Metrics struct {
	GrossConversion        float64 `json:"gross_conversion"`
	NetConversion          float64 `json:"net_conversion"`
	BookingRate            float64 `json:"booking_rate"`
	AppointmentSuccessRate float64 `json:"appointment_success_rate"`
	RealConversion         float64 `json:"real_conversion"`
}

// Funnel holds the counts the conversion ratios are computed from. Booked, Converted and
// AppFailed are event counts; BookedConverted counts distinct leads carrying both a booked
// and a converted event.
type Funnel struct {
	TotalLeads      int `json:"total_leads"`
	Booked          int `json:"booked"`
	Converted       int `json:"converted"`
	AppFailed       int `json:"app_failed"`
	BookedConverted int `json:"booked_converted"`
}

// CountFunnel reads the funnel counts from the aggregated buckets and the raw events.
func CountFunnel(b Buckets, events []entity.StatusEvent, totalLeads int, vocab entity.StatusVocabulary) Funnel {
	booked := make(map[string]bool)
	converted := make(map[string]bool)
	for _, e := range events {
		switch e.Status {
		case vocab.Booked:
			booked[e.LeadID] = true
		case vocab.Converted:
			converted[e.LeadID] = true
		}
	}
	both := 0
	for id := range converted {
		if booked[id] {
			both++
		}
	}

	return Funnel{
		TotalLeads:      totalLeads,
		Booked:          b.Count(vocab.Booked),
		Converted:       b.Count(vocab.Converted),
		AppFailed:       b.Count(vocab.AppFailed),
		BookedConverted: both,
	}
}

func CalculateMetrics(f Funnel) Metrics {
	return Metrics{
		GrossConversion:        percent(f.Converted, f.TotalLeads),
		NetConversion:          percent(min(f.BookedConverted, f.Booked), f.Booked),
		BookingRate:            percent(f.Booked, f.TotalLeads),
		AppointmentSuccessRate: percent(f.TotalLeads-f.AppFailed, f.TotalLeads),
		RealConversion:         percent(f.Converted, f.Booked-f.AppFailed),
	}
}

// percent is 0 whenever the denominator is not positive.
func percent(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

func ratioPercent(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den * 100
}

type StatusCard struct {
	Label          string  `json:"label"`
	Block          int     `json:"block"`
	Count          float64 `json:"count"`
	ExpectedAmount float64 `json:"expected_amount,omitempty"`
}

// BuildDashboardCards lays out the seven dashboard blocks in display order.
func BuildDashboardCards(b Buckets, totalLeads int, m Metrics, vocab entity.StatusVocabulary) []StatusCard {
	cards := []StatusCard{{Label: "Total Leads", Block: 1, Count: float64(totalLeads)}}

	for _, block := range []int{2, 3, 4} {
		for _, label := range vocab.Blocks[block] {
			if label == entity.ExpectedAmountCard {
				cards = append(cards, StatusCard{Label: label, Block: block, ExpectedAmount: b.TotalExpected()})
				continue
			}
			bucket := b[label]
			card := StatusCard{Label: label, Block: block, Count: float64(bucket.Count)}
			if block == 3 {
				card.ExpectedAmount = bucket.ExpectedAmount
			}
			cards = append(cards, card)
		}
	}

	return append(cards,
		StatusCard{Label: "Gross Conversion", Block: 5, Count: m.GrossConversion},
		StatusCard{Label: "Net Conversion", Block: 5, Count: m.NetConversion},
		StatusCard{Label: "BDE Booking Rate", Block: 6, Count: m.BookingRate},
		StatusCard{Label: "Successful Appointments", Block: 7, Count: m.AppointmentSuccessRate},
	)
}

type Collection struct {
	TotalCollected float64 `json:"total_collected"`
	ThisWeek       float64 `json:"this_week"`
	LastWeek       float64 `json:"last_week"`
	GrowthRate     float64 `json:"growth_rate"`
	Outstanding    float64 `json:"outstanding_balance"`
	Overdue        float64 `json:"overdue"`
	DueSoon        float64 `json:"due_soon"`
	RecoveryRate   float64 `json:"recovery_rate"`
}

const day = 24 * time.Hour

// CollectionAnalytics summarizes the payments whose effective date falls inside r.
func CollectionAnalytics(payments []entity.Payment, r DateRange, now time.Time) Collection {
	var c Collection
	weekAgo := now.Add(-7 * day)
	twoWeeksAgo := now.Add(-14 * day)
	monthAgo := now.Add(-30 * day)
	weekAhead := now.Add(7 * day)

	for _, p := range payments {
		when := p.EffectiveDate()
		if !r.ContainsLenient(&when) {
			continue
		}

		switch {
		case p.IsCompleted():
			c.TotalCollected += p.Amount
			if !when.Before(weekAgo) {
				c.ThisWeek += p.Amount
			} else if !when.Before(twoWeeksAgo) {
				c.LastWeek += p.Amount
			}
		case p.IsPending():
			c.Outstanding += p.Amount
			if p.CreatedAt.Before(monthAgo) {
				c.Overdue += p.Amount
			}
			exp := pendingExpiry(p)
			if exp.After(now) && !exp.After(weekAhead) {
				c.DueSoon += p.Amount
			}
		}
	}

	c.GrowthRate = ratioPercent(c.ThisWeek-c.LastWeek, c.LastWeek)
	c.RecoveryRate = ratioPercent(c.TotalCollected, c.TotalCollected+c.Outstanding)
	return c
}

func pendingExpiry(p entity.Payment) time.Time {
	if p.ExpiresAt != nil {
		return *p.ExpiresAt
	}
	if p.PlanExpiry != nil {
		return *p.PlanExpiry
	}
	return p.CreatedAt
}
