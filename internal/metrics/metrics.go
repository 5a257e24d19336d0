package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/database"
)

var (
	MessagesHandled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "finance",
		Subsystem: "telegram_bot",
		Name:      "messages_handled",
		Help:      "The total number of handled messages",
	})
	CommandsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "finance",
		Subsystem: "telegram_bot",
		Name:      "commands_processed",
		Help:      "The total number of processed commands",
	})
	AlertsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "finance",
		Subsystem: "telegram_bot",
		Name:      "alerts_sent",
		Help:      "The total number of threshold alert messages sent",
	})
	DigestsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "finance",
		Subsystem: "telegram_bot",
		Name:      "digests_sent",
		Help:      "The total number of daily digest messages sent",
	})
	FetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finance",
			Subsystem: "telegram_bot",
			Name:      "price_fetch_failures",
			Help:      "Failed upstream price lookups per source",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(MessagesHandled)
	prometheus.MustRegister(CommandsProcessed)
	prometheus.MustRegister(AlertsSent)
	prometheus.MustRegister(DigestsSent)
	prometheus.MustRegister(FetchFailures)
}

// LoadFromDB restores counter values persisted by a previous run.
func LoadFromDB(db *database.DB) {
	for name, counter := range plainCounters() {
		value, err := db.GetMetric(name)
		if err != nil {
			log.Errorf("Failed to load metric %s: %v", name, err)
			continue
		}
		counter.Add(value)
	}

	failures, err := db.GetMetricsWithLabel("price_fetch_failures")
	if err != nil {
		log.Errorf("Failed to load price_fetch_failures: %v", err)
		return
	}
	for source, value := range failures {
		FetchFailures.WithLabelValues(source).Add(value)
	}

	log.Debug("Metrics loaded from database.")
}

// SaveToDB persists the current counter values.
func SaveToDB(db *database.DB) {
	for name, counter := range plainCounters() {
		if err := db.SaveMetric(name, counterValue(counter)); err != nil {
			log.Errorf("Failed to save metric %s: %v", name, err)
		}
	}

	metricChan := make(chan prometheus.Metric, 64)
	go func() {
		FetchFailures.Collect(metricChan)
		close(metricChan)
	}()

	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Errorf("Failed to read price_fetch_failures metric: %v", err)
			continue
		}
		var source string
		for _, label := range metricProto.Label {
			if label.GetName() == "source" {
				source = label.GetValue()
			}
		}
		if err := db.SaveMetricWithLabel("price_fetch_failures", "source", source, metricProto.Counter.GetValue()); err != nil {
			log.Errorf("Failed to save price_fetch_failures sample: %v", err)
		}
	}

	log.Debug("Metrics saved to database.")
}

func plainCounters() map[string]prometheus.Counter {
	return map[string]prometheus.Counter{
		"messages_handled":   MessagesHandled,
		"commands_processed": CommandsProcessed,
		"alerts_sent":        AlertsSent,
		"digests_sent":       DigestsSent,
	}
}

func counterValue(metric prometheus.Collector) float64 {
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Errorf("Failed to read metric value: %v", err)
		return 0
	}
	return metricProto.Counter.GetValue()
}
