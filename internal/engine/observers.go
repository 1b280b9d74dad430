package engine

import (
	"sync"

	"github.com/rs/zerolog"
)

// ProgressUpdate carries the materialization progress as a fraction in
// [0.0, 1.0].
type ProgressUpdate struct {
	// Value is the fraction of graph nodes resolved so far.
	Value float64
}

// ProgressObserver receives progress notifications during materialization.
// Implementations must be safe for concurrent use: with parallel workers,
// sibling subtrees report progress from different goroutines.
type ProgressObserver interface {
	// Update reports the current progress fraction (0.0 to 1.0).
	Update(progress float64)
}

// ChannelObserver adapts the observer pattern to channel-based communication
// for UI code that consumes progress updates from a channel.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver creates an observer that sends updates to a channel.
// The channel should have sufficient buffer capacity to avoid drops.
//
// Parameters:
//   - ch: The channel to send progress updates to. If nil, updates are discarded.
//
// Returns:
//   - *ChannelObserver: A new observer that forwards to the channel.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update implements ProgressObserver by sending to the channel. The send is
// non-blocking: when the channel is full the update is dropped and the UI
// catches up on the next one.
func (o *ChannelObserver) Update(progress float64) {
	if o.channel == nil {
		return
	}
	if progress > 1.0 {
		progress = 1.0
	}
	select {
	case o.channel <- ProgressUpdate{Value: progress}:
	default:
	}
}

// LoggingObserver logs progress updates using zerolog, throttled to a
// minimum progress delta to avoid log spam on large graphs.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64
	mu        sync.Mutex
	lastLog   float64
}

// NewLoggingObserver creates an observer that logs progress whenever it has
// advanced by at least threshold since the last logged value.
//
// Parameters:
//   - logger: The zerolog logger to use.
//   - threshold: Minimum progress delta between log lines (e.g., 0.1).
//
// Returns:
//   - *LoggingObserver: A new throttled logging observer.
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	return &LoggingObserver{logger: logger, threshold: threshold, lastLog: -1}
}

// Update implements ProgressObserver by logging throttled progress lines.
func (o *LoggingObserver) Update(progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if progress < 1.0 && progress-o.lastLog < o.threshold {
		return
	}
	o.lastLog = progress
	o.logger.Info().Float64("progress", progress).Msg("materialization progress")
}
