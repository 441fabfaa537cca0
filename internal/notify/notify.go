package notify

import (
	"context"
	"time"
)

// MaxBatchSize is the largest number of updates a sink accepts in
// one delivery call, matching the chat platform's embed limit.
const MaxBatchSize = 10

// Update describes one newer-compatible-tag finding.
type Update struct {
	Image      string
	RunningTag string
	LatestTag  string
	URL        string
	ObservedAt time.Time
}

type Sink interface {
	Send(ctx context.Context, updates []Update) error
}
