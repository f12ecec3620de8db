package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/coach-crm/internal/entity"
)

const dashboardCacheTTL = 24 * time.Hour

type DashboardUseCase struct {
	Loader   *SnapshotLoader
	Vocab    entity.StatusVocabulary
	Regions  *RegionClassifier
	Guard    *GenerationGuard
	Cache    SnapshotCache
	Observer Observer
	Now      func() time.Time
}

func NewDashboardUseCase(loader *SnapshotLoader, vocab entity.StatusVocabulary, guard *GenerationGuard, cache SnapshotCache, obs Observer) *DashboardUseCase {
	return &DashboardUseCase{
		Loader:   loader,
		Vocab:    vocab,
		Regions:  NewRegionClassifier(),
		Guard:    guard,
		Cache:    cache,
		Observer: observerOrNop(obs),
		Now:      time.Now,
	}
}

func dashboardKey(actor Actor) string {
	return "dashboard:" + actor.UserID
}

// Execute derives the dashboard for actor. When the fetch fails with a retryable error and
// a previous result exists, that result is returned marked Stale together with the error.
func (uc *DashboardUseCase) Execute(ctx context.Context, actor Actor, f DashboardFilter) (*DashboardOutput, error) {
	key := dashboardKey(actor)
	token := uc.Guard.Next(key)

	snap, _, err := uc.Loader.Load(ctx, actor, NeedLeads|NeedEvents|NeedPayments)
	if err != nil {
		if IsRetryable(err) {
			if cached := uc.lastGood(ctx, key); cached != nil {
				cached.Stale = true
				return cached, err
			}
		}
		return nil, err
	}

	started := time.Now()
	out := uc.derive(snap, f)
	uc.Observer.ObserveDerivation("dashboard", time.Since(started))

	if !uc.Guard.IsCurrent(key, token) {
		uc.Observer.StaleDiscarded("dashboard")
		return nil, &TechnicalError{Code: CodeStaleDiscarded, Message: "superseded by a newer dashboard request"}
	}
	if uc.Cache != nil {
		if err := uc.Cache.Save(ctx, key, out, dashboardCacheTTL); err != nil {
			logrus.WithField("key", key).Warnf("⚠️ [DASHBOARD] cache save failed: %v", err)
		}
	}
	return out, nil
}

func (uc *DashboardUseCase) lastGood(ctx context.Context, key string) *DashboardOutput {
	if uc.Cache == nil {
		return nil
	}
	var out DashboardOutput
	ok, err := uc.Cache.Load(ctx, key, &out)
	if err != nil {
		logrus.WithField("key", key).Warnf("⚠️ [DASHBOARD] cache load failed: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	return &out
}

func (uc *DashboardUseCase) derive(snap Snapshot, f DashboardFilter) *DashboardOutput {
	now := uc.Now()

	spec := FilterSpec[entity.Lead]{
		Selects: []Select[entity.Lead]{
			{Value: func(l entity.Lead) string { return l.Status }, Options: f.Status},
			{Value: func(l entity.Lead) string { return l.SourceOr("") }, Options: f.Source},
			{Value: func(l entity.Lead) string { return uc.Regions.RegionOf(l.City) }, Options: f.Region},
			{Value: func(l entity.Lead) string { return l.Priority }, Options: f.Priority},
		},
		DateField: func(l entity.Lead) *time.Time { return &l.CreatedAt },
		Range:     f.Range,
	}
	leads := Filter(snap.Leads, spec)

	visible := make(map[string]struct{}, len(leads))
	for _, l := range leads {
		visible[l.ID] = struct{}{}
	}

	events := make([]entity.StatusEvent, 0, len(snap.Events))
	for _, e := range snap.Events {
		if _, ok := visible[e.LeadID]; !ok {
			continue
		}
		if !f.Range.ContainsLenient(&e.CreatedAt) {
			continue
		}
		events = append(events, e)
	}

	payments := make([]entity.Payment, 0, len(snap.Payments))
	for _, p := range snap.Payments {
		if p.LeadID == nil {
			payments = append(payments, p)
			continue
		}
		if _, ok := visible[*p.LeadID]; ok {
			payments = append(payments, p)
		}
	}

	buckets := Aggregate(events)
	funnel := CountFunnel(buckets, events, len(leads), uc.Vocab)
	metrics := CalculateMetrics(funnel)

	return &DashboardOutput{
		TotalLeads:  len(leads),
		Cards:       BuildDashboardCards(buckets, len(leads), metrics, uc.Vocab),
		Buckets:     buckets,
		Funnel:      funnel,
		Metrics:     metrics,
		Collection:  CollectionAnalytics(payments, f.Range, now),
		Regions:     uc.regionsOf(snap.Leads),
		Sources:     sourcesOf(snap.Leads),
		GeneratedAt: now,
	}
}

// regionsOf lists the classifier's regions present in the actor's leads, for the filter
// options. Unknown, when present, comes last.
func (uc *DashboardUseCase) regionsOf(leads []entity.Lead) []string {
	seen := make(map[string]struct{})
	for _, l := range leads {
		seen[uc.Regions.RegionOf(l.City)] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for _, r := range uc.Regions.Regions() {
		if _, ok := seen[r]; ok {
			out = append(out, r)
		}
	}
	if _, ok := seen[RegionUnknown]; ok {
		out = append(out, RegionUnknown)
	}
	return out
}

func sourcesOf(leads []entity.Lead) []string {
	seen := make(map[string]struct{})
	for _, l := range leads {
		if s := l.SourceOr(""); s != "" {
			seen[s] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
