package view

import (
	"context"
	"log/slog"
	"time"
)

// DefaultFPS is the tick rate of the animation loop.
const DefaultFPS = 60

// FrameSink receives the snapshot produced by every driven tick.
type FrameSink interface {
	PublishFrame(Snapshot)
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(Snapshot)

func (f FrameSinkFunc) PublishFrame(s Snapshot) { f(s) }

// Driver is the animation loop of a view. It ticks at a fixed rate while the
// simulation is active, publishes one last frame when it settles and then
// sleeps until the view signals activity.
type Driver struct {
	view     *View
	sink     FrameSink
	interval time.Duration
	logger   *slog.Logger
}

// NewDriver creates a driver ticking v fps times per second.
func NewDriver(v *View, sink FrameSink, fps int, logger *slog.Logger) *Driver {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Driver{
		view:     v,
		sink:     sink,
		interval: time.Second / time.Duration(fps),
		logger:   logger,
	}
}

// Run drives the view until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	active := true

	d.logger.Info("driver: started", slog.String("view", d.view.ID()), slog.Duration("interval", d.interval))
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("driver: stopped")
			return nil

		case <-d.view.Wake():
			if !active {
				active = true
				ticker.Reset(d.interval)
				d.logger.Debug("driver: resumed")
			}

		case <-ticker.C:
			if !active {
				continue
			}
			snap := d.view.Tick()
			d.sink.PublishFrame(snap)
			if snap.Settled {
				active = false
				ticker.Stop()
				d.logger.Debug("driver: settled", slog.Uint64("tick", snap.Tick))
			}
		}
	}
}
