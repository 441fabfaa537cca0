package watcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lodthe/tagwatch/internal/metrics"
	"github.com/lodthe/tagwatch/internal/notify"
	"github.com/lodthe/tagwatch/pkg/dockerhub"
	"github.com/lodthe/tagwatch/pkg/imageref"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultInterval = 5 * time.Minute

type WorkloadLister interface {
	Running(ctx context.Context) ([]imageref.Ref, error)
}

type CatalogSource interface {
	Get(ctx context.Context, repository string) ([]dockerhub.ImageTag, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, image, runningTag, latestTag string) bool
}

type Matcher func(catalog []dockerhub.ImageTag, runningTag string) (string, bool)

type Config struct {
	Interval time.Duration
}

// Status summarizes the most recently finished poll cycle.
type Status struct {
	CycleID       string    `json:"cycle_id"`
	FinishedAt    time.Time `json:"finished_at"`
	ImagesChecked int       `json:"images_checked"`
	UpdatesFound  int       `json:"updates_found"`
	Failures      int       `json:"failures"`
}

// Watcher drives poll cycles: it lists running workloads, resolves
// each image against the registry catalog, asks the tracker whether
// the finding is new, and flushes notifications to the sink.
type Watcher struct {
	logger  zerolog.Logger
	cfg     Config
	lister  WorkloadLister
	catalog CatalogSource
	match   Matcher
	tracker Evaluator
	sink    notify.Sink
	metr    *metrics.WatcherExporter

	// Guards against overlapping cycles: a tick that fires while the
	// previous cycle is still running is skipped.
	busy int32

	mu   sync.RWMutex
	last Status
}

func New(logger zerolog.Logger, cfg Config, lister WorkloadLister, catalog CatalogSource, match Matcher, tracker Evaluator, sink notify.Sink, metr *metrics.WatcherExporter) *Watcher {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}

	return &Watcher{
		logger:  logger,
		cfg:     cfg,
		lister:  lister,
		catalog: catalog,
		match:   match,
		tracker: tracker,
		sink:    sink,
		metr:    metr,
	}
}

// Run performs one cycle immediately and then on every tick until
// the context is canceled.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info().Dur("interval", w.cfg.Interval).Msg("watcher has been started")
	defer w.logger.Info().Msg("watcher has been finished")

	w.trigger(ctx)

	t := time.NewTicker(w.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-t.C:
		}

		w.trigger(ctx)
	}
}

func (w *Watcher) trigger(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&w.busy, 0, 1) {
		w.logger.Warn().Msg("previous poll cycle is still running, skipping this tick")
		w.metr.CycleSkipped()

		return
	}
	defer atomic.StoreInt32(&w.busy, 0)

	w.runCycle(ctx)
}

// LastStatus returns the summary of the last finished cycle.
func (w *Watcher) LastStatus() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.last
}

func (w *Watcher) runCycle(ctx context.Context) {
	startedAt := time.Now()
	status := Status{CycleID: uuid.NewString()}

	logger := w.logger.With().Str("cycle_id", status.CycleID).Logger()
	logger.Debug().Msg("poll cycle has been started")

	refs, err := w.lister.Running(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list running workloads, skipping the cycle")
		status.Failures++
		w.finishCycle(status, startedAt)

		return
	}

	var updates []notify.Update
	for _, ref := range refs {
		update, failed := w.checkImage(ctx, logger, ref)
		status.ImagesChecked++
		w.metr.ImageChecked()

		if failed {
			status.Failures++
			w.metr.ImageFailed()
		}
		if update != nil {
			updates = append(updates, *update)
		}
	}

	status.UpdatesFound = len(updates)
	w.flush(ctx, logger, updates)
	w.finishCycle(status, startedAt)

	logger.Info().Int("images_checked", status.ImagesChecked).Int("updates_found", status.UpdatesFound).
		Int("failures", status.Failures).Dur("elapsed", time.Since(startedAt)).Msg("poll cycle has been finished")
}

// checkImage resolves a single running reference. Failures are
// contained here: a registry outage degrades to a partial catalog,
// and an empty match result simply means no update is computable.
func (w *Watcher) checkImage(ctx context.Context, logger zerolog.Logger, ref imageref.Ref) (update *notify.Update, failed bool) {
	catalog, err := w.catalog.Get(ctx, ref.Repository)
	if err != nil {
		failed = true
		w.metr.CatalogFetchFailed()
	}

	latest, found := w.match(catalog, ref.Tag)
	if !found {
		logger.Debug().Str("image", ref.String()).Msg("no compatible tag found")
		return update, failed
	}

	if !w.tracker.Evaluate(ctx, ref.Repository, ref.Tag, latest) {
		return update, failed
	}

	logger.Info().Str("image", ref.String()).Str("latest", latest).Msg("newer compatible tag has been published")

	return &notify.Update{
		Image:      ref.Repository,
		RunningTag: ref.Tag,
		LatestTag:  latest,
		URL:        ref.HubURL(),
		ObservedAt: time.Now().UTC(),
	}, failed
}

// flush hands collected updates to the sink in batches. A failed
// batch is logged and the remaining batches are still delivered.
func (w *Watcher) flush(ctx context.Context, logger zerolog.Logger, updates []notify.Update) {
	for start := 0; start < len(updates); start += notify.MaxBatchSize {
		end := start + notify.MaxBatchSize
		if end > len(updates) {
			end = len(updates)
		}

		batch := updates[start:end]

		err := w.sink.Send(ctx, batch)
		if err != nil {
			logger.Error().Err(err).Int("batch_size", len(batch)).Msg("notification batch delivery failed")
			continue
		}

		w.metr.NotificationsSent(len(batch))
	}
}

func (w *Watcher) finishCycle(status Status, startedAt time.Time) {
	status.FinishedAt = time.Now()

	w.mu.Lock()
	w.last = status
	w.mu.Unlock()

	w.metr.CycleFinished(startedAt)
}
