package consts

import "time"

// UpdateMode selects how the orchestrator reacts once remote drift is
// detected. It is fixed at startup; changing it requires a restart.
type UpdateMode string

const (
	// ModeImmediate terminates the supervised process as soon as drift
	// is detected, with no player warning.
	ModeImmediate UpdateMode = "immediate"
	// ModeGraceful runs the warning countdown before terminating.
	ModeGraceful UpdateMode = "graceful"
	// ModeAnnounce sends a one-time notice and leaves the restart to an
	// operator. The orchestrator then only waits for the process to exit.
	ModeAnnounce UpdateMode = "announce"
)

// OrchestratorState is the lifecycle state of one orchestrator run.
type OrchestratorState string

const (
	StatePending  OrchestratorState = "PENDING"
	StatePolling  OrchestratorState = "POLLING"  // registry poll loop
	StateUpdating OrchestratorState = "UPDATING" // drift detected, mode branch active
	StateStopped  OrchestratorState = "STOPPED"  // run finished, update triggered
	StateAborted  OrchestratorState = "ABORTED"  // supervised process died on its own
)

// WarningThresholds are the remaining-second marks at which the countdown
// broadcasts a warning. At and below FinalWarningBand every second gets one.
var WarningThresholds = []int{300, 120, 60, 30, 10}

// FinalWarningBand is the inclusive remaining-seconds value at and below
// which the countdown warns on every tick.
const FinalWarningBand = 5

const (
	DefaultPollInterval = 300 // seconds
	DefaultGracePeriod  = 60  // seconds
	DefaultBranch       = "public"
	DefaultMode         = ModeImmediate

	// CountdownTick is the production tick granularity of the grace
	// countdown. Tests substitute a shorter tick.
	CountdownTick = time.Second

	// FinalBroadcastPause gives the in-game console time to render the
	// "restarting now" line before the process is torn down.
	FinalBroadcastPause = 2 * time.Second

	// DefaultRegistryTimeout bounds a single registry request. A poll
	// cycle must never outlive its interval because of a hung fetch.
	DefaultRegistryTimeout = 10 * time.Second
)
