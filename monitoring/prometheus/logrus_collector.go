package prometheus

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// logEntries is registered once at package init; every collector instance
// shares the same series.
var logEntries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "relation",
	Name:      "log_entries_total",
	Help:      "Count of log entries by level and component prefix.",
}, []string{"level", "prefix"})

// LogrusCollector is a logrus hook counting log entries per level and
// component prefix, so error spikes in one subsystem are visible on the
// metrics endpoint.
type LogrusCollector struct {
	entries *prometheus.CounterVec
}

// NewLogrusCollector returns a hook ready to be attached with logrus.AddHook.
func NewLogrusCollector() *LogrusCollector {
	return &LogrusCollector{
		entries: logEntries,
	}
}

// Fire is called on every log call.
func (c *LogrusCollector) Fire(entry *logrus.Entry) error {
	prefix := "global"
	if v, ok := entry.Data["prefix"]; ok {
		s, ok := v.(string)
		if !ok {
			return errors.New("prefix is not a string")
		}
		prefix = s
	}
	c.entries.WithLabelValues(entry.Level.String(), prefix).Inc()
	return nil
}

// Levels reports the log levels the hook counts.
func (_ *LogrusCollector) Levels() []logrus.Level {
	return []logrus.Level{logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel}
}
