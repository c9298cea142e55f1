// Package feed runs the generate-and-send loop.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mgwoorl/coursework/internal/metrics"
	"github.com/mgwoorl/coursework/internal/weather"
)

// Sender transmits one encoded snapshot.
type Sender interface {
	Send(payload []byte) (int, error)
	Dest() string
}

// Mirror receives a copy of every payload that was sent.
type Mirror interface {
	PublishSnapshot(payload []byte) error
}

type Options struct {
	Interval  time.Duration
	Generator *weather.Generator
	Sender    Sender
	// Mirror is optional.
	Mirror  Mirror
	Metrics *metrics.Feed
	Logger  *slog.Logger
}

// Emitter builds, encodes and sends one snapshot per interval on a single
// goroutine.
type Emitter struct {
	interval  time.Duration
	generator *weather.Generator
	sender    Sender
	mirror    Mirror
	metrics   *metrics.Feed
	logger    *slog.Logger

	sent     atomic.Uint64
	lastSent atomic.Int64
}

func NewEmitter(opts Options) (*Emitter, error) {
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", opts.Interval)
	}
	if opts.Sender == nil {
		return nil, errors.New("sender is required")
	}
	if opts.Generator == nil {
		opts.Generator = weather.NewGenerator(nil)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewFeed(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Emitter{
		interval:  opts.Interval,
		generator: opts.Generator,
		sender:    opts.Sender,
		mirror:    opts.Mirror,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}, nil
}

// Run emits a snapshot immediately and then once per interval until ctx is
// done or a send fails. A send failure is returned as is; nothing is retried.
func (e *Emitter) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.logger.Info("feed started", "dest", e.sender.Dest(), "interval", e.interval)

	if err := e.emit(); err != nil {
		return err
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := e.emit(); err != nil {
				return err
			}
		}
	}
}

func (e *Emitter) emit() error {
	start := time.Now()

	snap := e.generator.Snapshot()
	payload, pretty, err := encode(snap)
	if err != nil {
		return err
	}

	n, err := e.sender.Send(payload)
	if err != nil {
		return fmt.Errorf("send snapshot: %w", err)
	}

	e.metrics.ObserveSend(n, time.Since(start))
	seq := e.sent.Add(1)
	e.lastSent.Store(time.Now().UnixNano())

	e.logger.Info("snapshot sent",
		"dest", e.sender.Dest(),
		"seq", seq,
		"bytes", n,
		"samples", snap.SampleCount(),
		"payload", string(pretty),
	)

	if e.mirror != nil {
		if err := e.mirror.PublishSnapshot(payload); err != nil {
			e.metrics.IncMQTTFailure()
			e.logger.Warn("mqtt mirror publish failed", "seq", seq, "error", err)
		}
	}
	return nil
}

// encode renders the wire payload and its indented form for the log. Both
// are built before anything is sent.
func encode(snap weather.Snapshot) (payload, pretty []byte, err error) {
	payload, err = weather.Marshal(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("encode snapshot: %w", err)
	}
	pretty, err = weather.MarshalIndent(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("indent snapshot: %w", err)
	}
	return payload, pretty, nil
}

// Sent returns the number of snapshots sent so far.
func (e *Emitter) Sent() uint64 {
	return e.sent.Load()
}

// LastSent returns when the latest snapshot left the socket, or the zero
// time before the first send.
func (e *Emitter) LastSent() time.Time {
	ns := e.lastSent.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
