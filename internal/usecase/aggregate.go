package usecase

import "github.com/xavierca1/coach-crm/internal/entity"

type Bucket struct {
	Count          int     `json:"count"`
	ExpectedAmount float64 `json:"expected_amount"`
}

// Buckets is keyed by the raw status label of the events, unknown labels included.
type Buckets map[string]Bucket

// Aggregate counts events per status label and sums their expected amounts.
func Aggregate(events []entity.StatusEvent) Buckets {
	buckets := make(Buckets)
	for _, e := range events {
		b := buckets[e.Status]
		b.Count++
		if e.ExpectedAmount != nil {
			b.ExpectedAmount += *e.ExpectedAmount
		}
		buckets[e.Status] = b
	}
	return buckets
}

func (b Buckets) Count(status string) int {
	return b[status].Count
}

func (b Buckets) TotalEvents() int {
	total := 0
	for _, v := range b {
		total += v.Count
	}
	return total
}

func (b Buckets) TotalExpected() float64 {
	total := 0.0
	for _, v := range b {
		total += v.ExpectedAmount
	}
	return total
}
