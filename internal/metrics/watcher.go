package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type WatcherExporter struct {
	cycleDuration     prometheus.Histogram
	cycles            *prometheus.CounterVec
	imagesChecked     prometheus.Counter
	notificationsSent prometheus.Counter
	fetchFailures     prometheus.Counter
	imageFailures     prometheus.Counter
}

func NewWatcherExporter() *WatcherExporter {
	return &WatcherExporter{
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "watcher",
				Name:      "cycle_duration_seconds",
				Help:      "How long it took to run one poll cycle.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		cycles: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "watcher",
				Name:      "cycles_total",
				Help:      "How many poll cycles have been triggered.",
			},
			[]string{"result"},
		),
		imagesChecked: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "watcher",
				Name:      "images_checked_total",
				Help:      "How many running images have been resolved against the registry.",
			},
		),
		notificationsSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "watcher",
				Name:      "notifications_sent_total",
				Help:      "How many update notifications have been delivered.",
			},
		),
		fetchFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "watcher",
				Name:      "catalog_fetch_failures_total",
				Help:      "How many tag catalog fetches have failed.",
			},
		),
		imageFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "watcher",
				Name:      "image_failures_total",
				Help:      "How many per-image resolutions have failed.",
			},
		),
	}
}

func (w *WatcherExporter) CycleFinished(startedAt time.Time) {
	w.cycles.With(prometheus.Labels{"result": "ok"}).Inc()
	w.cycleDuration.Observe(time.Since(startedAt).Seconds())
}

func (w *WatcherExporter) CycleSkipped() {
	w.cycles.With(prometheus.Labels{"result": "skipped"}).Inc()
}

func (w *WatcherExporter) ImageChecked() {
	w.imagesChecked.Inc()
}

func (w *WatcherExporter) NotificationsSent(count int) {
	w.notificationsSent.Add(float64(count))
}

func (w *WatcherExporter) CatalogFetchFailed() {
	w.fetchFailures.Inc()
}

func (w *WatcherExporter) ImageFailed() {
	w.imageFailures.Inc()
}
