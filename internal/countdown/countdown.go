package countdown

import (
	"fmt"
	"time"

	"github.com/gamesrv/driftwatch/internal/monitor"
	"github.com/gamesrv/driftwatch/pkg/consts"
	"github.com/gamesrv/driftwatch/pkg/logger"
)

// Outcome is the terminal state of one countdown run.
type Outcome int

const (
	// Expired means the countdown ran to zero; the caller should now
	// terminate the process.
	Expired Outcome = iota
	// Aborted means the watched process died mid-countdown. Nothing is
	// left to warn or terminate.
	Aborted
)

// Liveness reports whether the watched process still exists.
type Liveness interface {
	IsAlive() bool
}

// Sink delivers one warning line to players.
type Sink interface {
	Send(line string)
}

// ExtensionSignal is an edge-triggered, consuming extension request.
type ExtensionSignal interface {
	Consume() bool
}

// Countdown drives the grace period before an enforced restart: a
// 1-second tick loop that broadcasts warnings at fixed remaining-time
// thresholds and supports additive mid-flight extension. Each extension
// adds one full base period, so repeated extensions compound. The loop
// runs on the caller's goroutine; there is never more than one countdown
// per orchestrator.
type Countdown struct {
	base int // seconds; also the amount added per extension
	sink Sink
	proc Liveness
	ext  ExtensionSignal

	tick       time.Duration
	finalPause time.Duration
}

func New(base int, sink Sink, proc Liveness, ext ExtensionSignal) *Countdown {
	return &Countdown{
		base:       base,
		sink:       sink,
		proc:       proc,
		ext:        ext,
		tick:       consts.CountdownTick,
		finalPause: consts.FinalBroadcastPause,
	}
}

// WithTiming overrides the tick and final-pause durations. Tests scale
// these down; production keeps the defaults.
func (c *Countdown) WithTiming(tick, finalPause time.Duration) *Countdown {
	c.tick = tick
	c.finalPause = finalPause
	return c
}

// Run executes the countdown to a terminal state. Per tick it checks, in
// order: process liveness (abort), the extension signal (add base and
// announce the new total), and the warning thresholds. An extension can
// push remaining back above a threshold; the threshold fires again on
// re-entry so players always get the standard warnings.
func (c *Countdown) Run() Outcome {
	remaining := c.base
	c.sink.Send(fmt.Sprintf("say SERVER UPDATE REQUIRED. Restarting in %s.", formatSpan(remaining)))
	logger.Log.Info("Grace countdown started", "base", c.base)

	for {
		if !c.proc.IsAlive() {
			// No one is listening and nothing is left to stop.
			logger.Log.Info("Process exited during countdown", "remaining", remaining)
			monitor.CountdownRemaining.Set(0)
			return Aborted
		}

		if c.ext != nil && c.ext.Consume() {
			remaining += c.base
			monitor.ExtensionsGranted.Inc()
			logger.Log.Info("Grace period extended", "added", c.base, "remaining", remaining)
			c.sink.Send(fmt.Sprintf("say Restart delayed. Now restarting in %s.", formatSpan(remaining)))
		}

		if warnAt(remaining) {
			c.sink.Send(fmt.Sprintf("say Restarting in %s.", formatSpan(remaining)))
		}
		monitor.CountdownRemaining.Set(float64(remaining))

		time.Sleep(c.tick)
		remaining--
		if remaining <= 0 {
			break
		}
	}

	monitor.CountdownRemaining.Set(0)
	c.sink.Send("say Restarting NOW.")
	// Let the final line render in-game before the stop lands.
	time.Sleep(c.finalPause)
	return Expired
}

// warnAt reports whether a warning fires at this remaining value.
func warnAt(remaining int) bool {
	if remaining <= consts.FinalWarningBand {
		return remaining >= 1
	}
	for _, th := range consts.WarningThresholds {
		if remaining == th {
			return true
		}
	}
	return false
}

// formatSpan renders a whole-second duration the way players read it.
func formatSpan(seconds int) string {
	if seconds >= 60 && seconds%60 == 0 {
		minutes := seconds / 60
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	if seconds == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}
