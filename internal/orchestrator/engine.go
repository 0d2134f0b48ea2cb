package orchestrator

import (
	"context"
	"time"

	"github.com/gamesrv/driftwatch/internal/console"
	"github.com/gamesrv/driftwatch/internal/countdown"
	"github.com/gamesrv/driftwatch/internal/extsignal"
	"github.com/gamesrv/driftwatch/internal/monitor"
	"github.com/gamesrv/driftwatch/internal/procwatch"
	"github.com/gamesrv/driftwatch/pkg/consts"
	"github.com/gamesrv/driftwatch/pkg/fsm"
	"github.com/gamesrv/driftwatch/pkg/logger"
	"github.com/gamesrv/driftwatch/pkg/protocol"
)

// DriftChecker is the Version Oracle as seen by the engine.
type DriftChecker interface {
	CheckDrift(ctx context.Context, ref protocol.PackageRef) protocol.DriftResult
}

// Engine is the update orchestrator: it polls the registry for drift in
// any tracked package and, on detection, walks the supervised process
// through the configured update mode. One engine handles exactly one
// update cycle; its return is the signal that this generation is done
// and the outer supervisor should restart the world. It never loops back
// to re-check after triggering a stop.
type Engine struct {
	cfg    *protocol.Config
	fsm    *fsm.Machine
	oracle DriftChecker
	sink   console.Sink
	proc   procwatch.Handle
	ext    countdown.ExtensionSignal
	log    logger.Logger

	pollInterval  time.Duration
	countdownTick time.Duration
	finalPause    time.Duration

	seenUnknown map[string]bool
}

const (
	eventStart fsm.Event = "start"
	eventDrift fsm.Event = "drift"
	eventDied  fsm.Event = "died"
	eventDone  fsm.Event = "done"
)

func NewEngine(cfg *protocol.Config, oracle DriftChecker, sink console.Sink, proc procwatch.Handle, ext extsignal.Signal) *Engine {
	e := &Engine{
		cfg:           cfg,
		fsm:           fsm.New(fsm.State(consts.StatePending)),
		oracle:        oracle,
		sink:          sink,
		proc:          proc,
		ext:           ext,
		log:           logger.Log,
		pollInterval:  time.Duration(cfg.Update.PollIntervalSeconds) * time.Second,
		countdownTick: consts.CountdownTick,
		finalPause:    consts.FinalBroadcastPause,
		seenUnknown:   make(map[string]bool),
	}
	e.setupFSM()
	return e
}

func (e *Engine) setupFSM() {
	pending := fsm.State(consts.StatePending)
	polling := fsm.State(consts.StatePolling)
	updating := fsm.State(consts.StateUpdating)
	stopped := fsm.State(consts.StateStopped)
	aborted := fsm.State(consts.StateAborted)

	e.fsm.AddTransition(pending, polling, eventStart, nil)
	e.fsm.AddTransition(pending, aborted, eventDied, nil)
	e.fsm.AddTransition(polling, updating, eventDrift, nil)
	e.fsm.AddTransition(polling, aborted, eventDied, nil)
	e.fsm.AddTransition(polling, stopped, eventDone, nil) // operator shutdown
	e.fsm.AddTransition(updating, stopped, eventDone, nil)
	e.fsm.AddTransition(updating, aborted, eventDied, nil)
}

// State exposes the current lifecycle state for logging and tests.
func (e *Engine) State() consts.OrchestratorState {
	return consts.OrchestratorState(e.fsm.Current())
}

// Run drives one full update cycle to a terminal outcome. Nothing after
// startup is allowed to crash it: registry trouble retries forever at
// the polling cadence, and a vanished process is a clean exit, not an
// error.
func (e *Engine) Run(ctx context.Context) protocol.Outcome {
	if !e.proc.IsAlive() {
		// Nothing to protect; exit silently.
		e.fsm.Fire(eventDied)
		return protocol.OutcomeProcessDied
	}
	e.fsm.Fire(eventStart)
	e.log.Info("Polling for updates", "mode", string(e.cfg.Mode()), "interval", e.pollInterval.String(), "packages", len(e.cfg.Packages))

	ref, remote, outcome := e.pollUntilDrift(ctx)
	if ref == nil {
		if outcome == protocol.OutcomeProcessDied {
			e.fsm.Fire(eventDied)
		} else {
			e.fsm.Fire(eventDone)
		}
		return outcome
	}

	e.fsm.Fire(eventDrift)
	e.log.Info("Update detected", "package", ref.Name, "remote_build", string(remote))
	monitor.DriftDetected.WithLabelValues(ref.Name).Inc()

	switch e.cfg.Mode() {
	case consts.ModeImmediate:
		e.terminate()
	case consts.ModeGraceful:
		cd := countdown.New(e.cfg.Update.GracePeriodSeconds, e.sink, e.proc, e.ext).
			WithTiming(e.countdownTick, e.finalPause)
		if cd.Run() == countdown.Aborted {
			e.fsm.Fire(eventDied)
			return protocol.OutcomeProcessDied
		}
		e.terminate()
	case consts.ModeAnnounce:
		e.sink.Send("say SERVER UPDATE AVAILABLE. An operator will restart the server soon.")
		e.log.Info("Update announced; waiting for operator-driven restart")
		if !e.waitForExit(ctx) {
			e.fsm.Fire(eventDone)
			return protocol.OutcomeCanceled
		}
	}

	e.fsm.Fire(eventDone)
	e.log.Info("Update cycle complete; exiting for supervisor restart")
	return protocol.OutcomeUpdateTriggered
}

// pollUntilDrift sleeps and checks until a package drifts, the process
// dies, or ctx is canceled. A nil ref means no drift was found; outcome
// carries the reason.
func (e *Engine) pollUntilDrift(ctx context.Context) (*protocol.PackageRef, protocol.BuildVersion, protocol.Outcome) {
	for {
		select {
		case <-ctx.Done():
			e.log.Info("Shutdown requested; leaving the process alone")
			return nil, "", protocol.OutcomeCanceled
		case <-time.After(e.pollInterval):
		}

		if !e.proc.IsAlive() {
			e.log.Info("Supervised process exited; nothing left to watch")
			return nil, "", protocol.OutcomeProcessDied
		}

		monitor.PollCycles.Inc()
		// Fixed, configured order so logs are reproducible; first drift
		// wins and covers all pending updates in the subsequent sync.
		for i := range e.cfg.Packages {
			ref := &e.cfg.Packages[i]
			res := e.oracle.CheckDrift(ctx, *ref)
			switch res.Status {
			case protocol.Drifted:
				return ref, res.Remote, protocol.OutcomeUpdateTriggered
			case protocol.DriftUnknown:
				monitor.OracleUnknown.WithLabelValues(ref.Name).Inc()
				e.logUnknown(ref.Name, res.Reason)
			case protocol.UpToDate:
			}
		}
	}
}

// logUnknown reports a reason at Info the first time it appears for a
// package and at Debug afterwards, so a long registry outage does not
// flood the log.
func (e *Engine) logUnknown(pkg, reason string) {
	key := pkg + "|" + reason
	if !e.seenUnknown[key] {
		e.seenUnknown[key] = true
		e.log.Info("Drift check inconclusive", "package", pkg, "reason", reason)
		return
	}
	e.log.Debug("Drift check inconclusive", "package", pkg, "reason", reason)
}

func (e *Engine) terminate() {
	if err := e.proc.RequestTermination(); err != nil {
		// The process will be torn down by the supervisor either way.
		e.log.Warn("Termination request failed", "err", err)
	}
}

// waitForExit blocks until the supervised process exits on its own.
// Only liveness is polled here; no further registry checks happen once
// an update has been announced. Returns false if ctx was canceled first.
func (e *Engine) waitForExit(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(e.pollInterval):
		}
		if !e.proc.IsAlive() {
			return true
		}
	}
}
