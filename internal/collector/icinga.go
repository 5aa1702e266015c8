package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wtc-cli/wtc/internal/types"
)

// HealthyServicesLimit caps the recovered-services query
const HealthyServicesLimit = 500

const (
	queryNotifications = "notifications"
	queryServices      = "services"
)

// Snapshot is what one instance returned for one refresh cycle
type Snapshot struct {
	Source        string
	Notifications []types.NotificationRecord
	Healthy       []types.ServiceHealthRecord
}

// SourceHealth tracks fetch results for an instance
type SourceHealth struct {
	LastFetch     time.Time
	LastDuration  time.Duration
	LastError     string
	FailureCount  int
	Notifications int
	Healthy       int
}

// Collector queries one Icinga Web 2 instance
type Collector struct {
	instance string
	creds    Credentials
	lookback string
	timeout  time.Duration
	fetcher  Fetcher
	logger   zerolog.Logger

	mu     sync.RWMutex
	health SourceHealth
}

// NewCollector creates a new collector for the instance base URL
func NewCollector(instance string, creds Credentials, lookback string, timeout time.Duration, fetcher Fetcher, logger zerolog.Logger) *Collector {
	instance = strings.TrimRight(instance, "/")
	return &Collector{
		instance: instance,
		creds:    creds,
		lookback: lookback,
		timeout:  timeout,
		fetcher:  fetcher,
		logger:   logger.With().Str("source", instance).Logger(),
	}
}

// Instance returns the base URL this collector talks to
func (c *Collector) Instance() string {
	return c.instance
}

// Health returns the current health status
func (c *Collector) Health() SourceHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// Fetch loads the recent notifications and the most recently recovered
// services. Errors are *SourceError values.
func (c *Collector) Fetch(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	snap, err := c.fetch(ctx)

	c.mu.Lock()
	c.health.LastFetch = start
	c.health.LastDuration = time.Since(start)
	if err != nil {
		c.health.LastError = err.Error()
		c.health.FailureCount++
	} else {
		c.health.LastError = ""
		c.health.Notifications = len(snap.Notifications)
		c.health.Healthy = len(snap.Healthy)
	}
	c.mu.Unlock()

	if err != nil {
		return Snapshot{}, err
	}

	c.logger.Debug().
		Int("notifications", len(snap.Notifications)).
		Int("healthy", len(snap.Healthy)).
		Dur("took", time.Since(start)).
		Msg("Fetched instance")
	return snap, nil
}

func (c *Collector) fetch(ctx context.Context) (Snapshot, error) {
	headers := http.Header{"Accept": []string{"application/json"}}

	notifBody, err := c.fetcher.FetchJSON(ctx, NotificationsURL(c.instance, c.lookback), headers, c.creds, c.timeout)
	if err != nil {
		return Snapshot{}, unavailable(c.instance, queryNotifications, err)
	}
	healthyBody, err := c.fetcher.FetchJSON(ctx, HealthyServicesURL(c.instance), headers, c.creds, c.timeout)
	if err != nil {
		return Snapshot{}, unavailable(c.instance, queryServices, err)
	}

	var notifications []types.NotificationRecord
	if err := json.Unmarshal(notifBody, &notifications); err != nil {
		return Snapshot{}, protocolError(c.instance, queryNotifications, err)
	}
	for i := range notifications {
		if !notifications[i].Timestamp.Valid {
			return Snapshot{}, protocolError(c.instance, queryNotifications,
				fmt.Errorf("record %d (host %q) has no notification_timestamp", i, notifications[i].HostName))
		}
		notifications[i].Source = c.instance
	}

	var healthy []types.ServiceHealthRecord
	if err := json.Unmarshal(healthyBody, &healthy); err != nil {
		return Snapshot{}, protocolError(c.instance, queryServices, err)
	}
	for i := range healthy {
		if !healthy[i].LastStateChange.Valid {
			return Snapshot{}, protocolError(c.instance, queryServices,
				fmt.Errorf("record %d (host %q) has no service_last_state_change", i, healthy[i].HostDisplayName))
		}
	}
	if len(healthy) > HealthyServicesLimit {
		healthy = healthy[:HealthyServicesLimit]
	}

	return Snapshot{
		Source:        c.instance,
		Notifications: notifications,
		Healthy:       healthy,
	}, nil
}

// NotificationsURL builds the query for notifications newer than lookback.
// lookback is passed through to Icinga's filter parser ("-1 days").
func NotificationsURL(instance, lookback string) string {
	return fmt.Sprintf("%s/monitoring/list/notifications?notification_timestamp>=%s",
		strings.TrimRight(instance, "/"), url.PathEscape(lookback))
}

// HealthyServicesURL builds the query for services currently in OK state,
// most recent state change first.
func HealthyServicesURL(instance string) string {
	return fmt.Sprintf("%s/monitoring/list/services?service_state=0&limit=%d&sort=service_last_state_change&dir=desc",
		strings.TrimRight(instance, "/"), HealthyServicesLimit)
}

// IsSourceError reports whether err came from a collector
func IsSourceError(err error) bool {
	var se *SourceError
	return errors.As(err, &se)
}
