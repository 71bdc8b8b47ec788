// Package metrics records catalog call and run outcome metrics with the
// Prometheus client. A sync is a batch job, so metrics are exported as a
// node_exporter textfile rather than served.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
	pkgsync "github.com/agentstation/catalogsync/pkg/sync"
)

// Namespace prefixes every metric name.
const Namespace = "catalogsync"

// Collector holds the Prometheus metrics of one process.
type Collector struct {
	registry *prometheus.Registry

	callCounter  *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	entries      *prometheus.GaugeVec
	tags         *prometheus.GaugeVec
	runDuration  *prometheus.GaugeVec
	lastRun      *prometheus.GaugeVec
	runComplete  *prometheus.GaugeVec
}

// NewCollector creates a collector with its own registry.
func NewCollector() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		callCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "catalog_calls_total",
			Help:      "Total number of catalog API calls",
		}, []string{"operation", "status"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "catalog_call_duration_seconds",
			Help:      "Duration of catalog API calls",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"operation"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "entries",
			Help:      "Entries by outcome in the last run",
		}, []string{"mode", "outcome"}),
		tags: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "tags",
			Help:      "Tags by outcome in the last run",
		}, []string{"mode", "outcome"}),
		runDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the last run",
		}, []string{"mode"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Execution time of the last run",
		}, []string{"mode"}),
		runComplete: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_complete",
			Help:      "1 if the last run had no per-entry failures",
		}, []string{"mode"}),
	}

	for _, m := range []prometheus.Collector{
		c.callCounter, c.callDuration, c.entries, c.tags, c.runDuration, c.lastRun, c.runComplete,
	} {
		if err := c.registry.Register(m); err != nil {
			return nil, errors.WrapResource("register", "metric", Namespace, err)
		}
	}
	return c, nil
}

// Registry returns the registry holding every metric.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordCall records one catalog API call.
func (c *Collector) RecordCall(operation string, duration time.Duration, err error) {
	c.callCounter.With(prometheus.Labels{
		"operation": operation,
		"status":    callStatus(err),
	}).Inc()
	c.callDuration.With(prometheus.Labels{"operation": operation}).Observe(duration.Seconds())
}

// ObserveResult records the outcome counts of a finished run.
func (c *Collector) ObserveResult(r *pkgsync.Result) {
	if r == nil {
		return
	}
	mode := string(r.Mode)

	for outcome, n := range map[string]int{
		"found":         r.Found,
		"created":       r.Created,
		"updated":       r.Updated,
		"unchanged":     r.Unchanged,
		"failed":        r.Failed,
		"existing":      r.Existing,
		"deleted":       r.Deleted,
		"delete_failed": r.DeleteFailed,
	} {
		c.entries.With(prometheus.Labels{"mode": mode, "outcome": outcome}).Set(float64(n))
	}
	for outcome, n := range map[string]int{
		"created":   r.TagsCreated,
		"updated":   r.TagsUpdated,
		"unchanged": r.TagsUnchanged,
	} {
		c.tags.With(prometheus.Labels{"mode": mode, "outcome": outcome}).Set(float64(n))
	}

	c.runDuration.With(prometheus.Labels{"mode": mode}).Set(r.Elapsed.Seconds())
	c.lastRun.With(prometheus.Labels{"mode": mode}).Set(float64(r.ExecutionTime.Unix()))
	complete := 0.0
	if r.Complete() {
		complete = 1
	}
	c.runComplete.With(prometheus.Labels{"mode": mode}).Set(complete)
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is written atomically. Missing parent directories are created.
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapResource("create", "metrics directory", filepath.Dir(path), err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.WrapResource("write", "metrics textfile", path, err)
	}
	return nil
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.IsNotFound(err):
		return "not_found"
	case errors.IsPermissionDenied(err):
		return "denied"
	case errors.IsAlreadyExists(err):
		return "already_exists"
	case errors.IsTimeout(err):
		return "timeout"
	default:
		return "error"
	}
}
