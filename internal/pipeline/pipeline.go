package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/wildlife-health-watch/internal/aggregate"
	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/filter"
	"github.com/couchcryptid/wildlife-health-watch/internal/observability"
	"github.com/couchcryptid/wildlife-health-watch/internal/store"
	"github.com/jonboulle/clockwork"
)

// ErrSnapshotUnavailable wraps any failure to produce the case snapshot.
var ErrSnapshotUnavailable = errors.New("case snapshot unavailable")

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Source produces the records of one snapshot. Key identifies the snapshot
// in the process-wide cache, so two sources with equal keys must load equal
// collections.
type Source interface {
	Key() string
	Load(ctx context.Context) ([]domain.CaseRecord, error)
}

// Pipeline answers dashboard queries: each call filters the memoized
// snapshot and aggregates the result in one synchronous pass.
type Pipeline struct {
	source  Source
	cache   *store.Cache
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline over source. A nil clock uses the real clock.
func New(source Source, cache *store.Cache, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		source:  source,
		cache:   cache,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Page is everything the HTML dashboard renders for one request.
type Page struct {
	Spec      filter.Spec
	Dashboard aggregate.Dashboard
	Options   aggregate.FilterOptions
}

// CheckReadiness returns nil once the snapshot has loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("case snapshot has not loaded yet")
	}
	return nil
}

// Ready reports whether the snapshot has loaded.
func (p *Pipeline) Ready() bool { return p.ready.Load() }

// Warm loads the snapshot into the cache.
func (p *Pipeline) Warm(ctx context.Context) error {
	_, err := p.snapshot(ctx)
	return err
}

// Run warms the snapshot, retrying with exponential backoff until it loads
// or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		err := p.Warm(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			p.logger.Info("snapshot warm-up stopping", "reason", ctx.Err())
			return nil
		}
		p.logger.Warn("snapshot load failed, retrying", "error", err, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return nil
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

// Dashboard filters the snapshot by the query values and aggregates every view.
func (p *Pipeline) Dashboard(ctx context.Context, values url.Values) (aggregate.Dashboard, error) {
	spec, records, err := p.filtered(ctx, values, observability.ViewDashboard)
	if err != nil {
		return aggregate.Dashboard{}, err
	}
	return p.build(spec, records), nil
}

// Cases returns the filtered records in report-date order.
func (p *Pipeline) Cases(ctx context.Context, values url.Values, view string) ([]domain.CaseRecord, error) {
	_, records, err := p.filtered(ctx, values, view)
	return records, err
}

// Options lists the filter values present in the whole snapshot.
func (p *Pipeline) Options(ctx context.Context) (aggregate.FilterOptions, error) {
	s, err := p.snapshot(ctx)
	if err != nil {
		return aggregate.FilterOptions{}, err
	}
	p.metrics.DashboardRequests.WithLabelValues(observability.ViewFilters).Inc()
	return aggregate.Options(s.Records()), nil
}

// Page builds the dashboard together with the form options and parsed filters.
func (p *Pipeline) Page(ctx context.Context, values url.Values) (Page, error) {
	spec, records, err := p.filtered(ctx, values, observability.ViewPage)
	if err != nil {
		return Page{}, err
	}
	s, err := p.snapshot(ctx)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Spec:      spec,
		Dashboard: p.build(spec, records),
		Options:   aggregate.Options(s.Records()),
	}, nil
}

func (p *Pipeline) filtered(ctx context.Context, values url.Values, view string) (filter.Spec, []domain.CaseRecord, error) {
	spec, err := filter.Parse(values)
	if err != nil {
		p.metrics.FilterRejections.Inc()
		p.logger.Warn("rejected filter", "error", err, "view", view)
		return filter.Spec{}, nil, err
	}

	s, err := p.snapshot(ctx)
	if err != nil {
		return filter.Spec{}, nil, err
	}

	records := filter.Apply(s.Records(), spec)
	p.metrics.DashboardRequests.WithLabelValues(view).Inc()
	p.metrics.FilteredRecords.Observe(float64(len(records)))
	p.logger.Debug("filter applied", "view", view, "filter", spec.Key(), "matched", len(records), "total", s.Len())
	return spec, records, nil
}

func (p *Pipeline) build(spec filter.Spec, records []domain.CaseRecord) aggregate.Dashboard {
	start := time.Now()
	d := aggregate.Build(records, p.clock.Now())
	p.metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	if d.Empty {
		p.logger.Debug("no records match filter", "filter", spec.Key())
	}
	return d
}

func (p *Pipeline) snapshot(ctx context.Context) (*store.Store, error) {
	key := p.source.Key()
	s, err := p.cache.Get(ctx, key, p.load)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}
	if p.ready.CompareAndSwap(false, true) {
		p.metrics.SnapshotReady.Set(1)
		p.metrics.SnapshotRecords.Set(float64(s.Len()))
		first, last, _ := s.DateBounds()
		p.logger.Info("snapshot ready", "source", key, "records", s.Len(),
			"first_report", first.Format(domain.DateLayout), "last_report", last.Format(domain.DateLayout))
	}
	return s, nil
}

func (p *Pipeline) load(ctx context.Context) ([]domain.CaseRecord, error) {
	start := time.Now()
	records, err := p.source.Load(ctx)
	if err != nil {
		p.metrics.SnapshotLoadErrors.Inc()
		p.logger.Error("snapshot load failed", "source", p.source.Key(), "error", err)
		return nil, err
	}
	p.metrics.SnapshotLoadDuration.Observe(time.Since(start).Seconds())
	return records, nil
}
