package aggregator

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wtc-cli/wtc/internal/collector"
	"github.com/wtc-cli/wtc/internal/recovery"
	"github.com/wtc-cli/wtc/internal/types"
)

// Source is one monitoring instance. *collector.Collector implements it.
type Source interface {
	Instance() string
	Fetch(ctx context.Context) (collector.Snapshot, error)
}

// SourceFailure is a source that was skipped in tolerant mode
type SourceFailure struct {
	Source string
	Err    error
}

// Result is the merged view of one refresh cycle
type Result struct {
	// Notifications is ordered by notification timestamp, most recent first.
	Notifications []types.NotificationRecord
	Failed        []SourceFailure
	FetchedAt     time.Time
}

// Aggregator fans out to all sources and merges their notifications
type Aggregator struct {
	sources  []Source
	tolerant bool
	logger   zerolog.Logger
}

// NewAggregator creates an aggregator. With tolerant set, a failing source is
// reported in Result.Failed instead of failing the whole cycle, as long as at
// least one source succeeds.
func NewAggregator(sources []Source, tolerant bool, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		sources:  sources,
		tolerant: tolerant,
		logger:   logger.With().Str("component", "aggregator").Logger(),
	}
}

// Aggregate fetches every source concurrently, marks recovered notifications,
// attaches their web URLs and returns them merged and sorted. Nothing is
// merged until all sources have answered.
func (a *Aggregator) Aggregate(ctx context.Context) (Result, error) {
	perSource := make([][]types.NotificationRecord, len(a.sources))
	failures := make([]error, len(a.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			snap, err := src.Fetch(gctx)
			if err != nil {
				if a.tolerant {
					failures[i] = err
					return nil
				}
				return err
			}
			perSource[i] = a.annotate(snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	result := Result{FetchedAt: time.Now()}
	var errs []error
	for i, err := range failures {
		if err == nil {
			continue
		}
		errs = append(errs, err)
		result.Failed = append(result.Failed, SourceFailure{Source: a.sources[i].Instance(), Err: err})
		a.logger.Warn().
			Err(err).
			Str("source", a.sources[i].Instance()).
			Msg("Source failed, showing results from remaining sources")
	}
	if len(a.sources) > 0 && len(errs) == len(a.sources) {
		return Result{}, errors.Join(errs...)
	}

	total := 0
	for _, recs := range perSource {
		total += len(recs)
	}
	merged := make([]types.NotificationRecord, 0, total)
	for _, recs := range perSource {
		merged = append(merged, recs...)
	}
	SortByTimestamp(merged)
	result.Notifications = merged

	a.logger.Debug().
		Int("sources", len(a.sources)).
		Int("failed", len(result.Failed)).
		Int("notifications", len(merged)).
		Msg("Aggregated notifications")
	return result, nil
}

func (a *Aggregator) annotate(snap collector.Snapshot) []types.NotificationRecord {
	recs := snap.Notifications
	for i := range recs {
		recs[i].Source = snap.Source
		recs[i].URL = BuildURL(snap.Source, recs[i].HostName, recs[i].ServiceDescription)
	}
	recovered := recovery.Annotate(recs, snap.Healthy)

	a.logger.Debug().
		Str("source", snap.Source).
		Int("notifications", len(recs)).
		Int("healthy", len(snap.Healthy)).
		Int("recovered", recovered).
		Msg("Correlated recoveries")
	return recs
}

// SortByTimestamp orders records by notification timestamp, most recent
// first. Records with equal timestamps keep their relative order.
func SortByTimestamp(recs []types.NotificationRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Timestamp.Unix > recs[j].Timestamp.Unix
	})
}

// BuildURL returns the Icinga Web 2 page for a host, or for a service when
// service is non-nil.
func BuildURL(instance, host string, service *string) string {
	base := strings.TrimRight(instance, "/")
	q := url.Values{}
	q.Set("host", host)
	if service == nil {
		return base + "/monitoring/host/show?" + q.Encode()
	}
	q.Set("service", *service)
	return base + "/monitoring/service/show?" + q.Encode()
}
