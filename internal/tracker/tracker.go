package tracker

import (
	"context"

	"github.com/lodthe/tagwatch/internal/state"

	"github.com/rs/zerolog"
)

// Tracker decides whether a resolved latest tag is new enough to
// report, against state persisted across restarts. It owns the
// in-memory mirror of the state store and keeps the two in sync.
//
// The outcome is at-most-once notification per distinct resolved
// latest tag: an unchanged registry never re-notifies, and a new
// latest tag notifies exactly once even if the running container
// is never upgraded.
type Tracker struct {
	logger  zerolog.Logger
	store   state.Store
	entries map[string]state.Entry
}

func New(logger zerolog.Logger, store state.Store, entries map[string]state.Entry) *Tracker {
	if entries == nil {
		entries = make(map[string]state.Entry)
	}

	return &Tracker{
		logger:  logger,
		store:   store,
		entries: entries,
	}
}

// Evaluate records the resolved latest tag for the image and reports
// whether a notification should be emitted.
//
// The updated entry is persisted synchronously before returning; a
// persistence failure is logged and the in-memory state kept, so the
// divergence heals on the next successful write.
func (t *Tracker) Evaluate(ctx context.Context, image, runningTag, latestTag string) bool {
	prev, tracked := t.entries[image]

	notify := false
	switch {
	case tracked && prev.Announced && prev.LatestTag == latestTag:
		// Already reported this exact version.

	case runningTag != latestTag:
		notify = true
	}

	updated := state.Entry{LatestTag: latestTag, Announced: true}
	t.entries[image] = updated

	err := t.store.Put(ctx, image, updated)
	if err != nil {
		t.logger.Error().Err(err).Str("image", image).Msg("state persistence failed")
	}

	return notify
}

// Entry exposes the tracked state for an image.
func (t *Tracker) Entry(image string) (state.Entry, bool) {
	e, found := t.entries[image]
	return e, found
}
