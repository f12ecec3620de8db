package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/coach-crm/internal/entity"
)

type ListLeadsUseCase struct {
	Loader  *SnapshotLoader
	Regions *RegionClassifier
}

func NewListLeadsUseCase(loader *SnapshotLoader) *ListLeadsUseCase {
	return &ListLeadsUseCase{Loader: loader, Regions: NewRegionClassifier()}
}

var priorityRank = map[string]float64{
	entity.PriorityLow:    1,
	entity.PriorityMedium: 2,
	entity.PriorityHigh:   3,
}

var leadSorter = Sorter[LeadView]{
	"name":       {String: func(v LeadView) string { return v.Name }},
	"status":     {String: func(v LeadView) string { return v.CurrentStatus }},
	"source":     {String: func(v LeadView) string { return v.SourceOr("") }},
	"city":       {String: func(v LeadView) string { return v.City }},
	"region":     {String: func(v LeadView) string { return v.Region }},
	"priority":   {Number: func(v LeadView) float64 { return priorityRank[v.Priority] }},
	"lead_score": {Number: func(v LeadView) float64 { return float64(v.LeadScore) }},
	"created_at": {Time: func(v LeadView) *time.Time { return &v.CreatedAt }},
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, actor Actor, q LeadQuery) (Page[LeadView], error) {
	snap, _, err := uc.Loader.Load(ctx, actor, NeedLeads|NeedEvents)
	if err != nil {
		return Page[LeadView]{}, err
	}

	idx := newJoinIndex(snap)
	views := make([]LeadView, 0, len(snap.Leads))
	for _, l := range snap.Leads {
		views = append(views, LeadView{
			Lead:          l,
			CurrentStatus: idx.status(l),
			Region:        uc.Regions.RegionOf(l.City),
		})
	}

	spec := FilterSpec[LeadView]{
		Search: q.Search,
		SearchFields: []func(LeadView) string{
			func(v LeadView) string { return v.Name },
			func(v LeadView) string { return v.Email },
			func(v LeadView) string { return v.Phone },
			func(v LeadView) string { return v.City },
			func(v LeadView) string { return v.Profession },
		},
		Selects: []Select[LeadView]{
			{Value: func(v LeadView) string { return v.CurrentStatus }, Options: q.Status},
			{Value: func(v LeadView) string { return v.SourceOr("") }, Options: q.Source},
			{Value: func(v LeadView) string { return v.Region }, Options: q.Region},
			{Value: func(v LeadView) string { return v.Priority }, Options: q.Priority},
			{Value: func(v LeadView) string { return v.CounselorOr(unassigned) }, Options: q.Counselor},
		},
		DateField: func(v LeadView) *time.Time { return &v.CreatedAt },
		Range:     q.Range,
	}

	return Apply(views, spec, leadSorter, q.Sort, q.Page, q.Size), nil
}
