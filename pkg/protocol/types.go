package protocol

// BuildVersion is an opaque build identifier published by the registry.
// It is only ever compared for equality; no ordering is assumed.
type BuildVersion string

// PackageRef identifies one tracked content package. Each deployment
// tracks a fixed set of these; drift in any one of them triggers the
// same update flow.
type PackageRef struct {
	AppID        uint32 `yaml:"app_id" validate:"required"`
	Name         string `yaml:"name" validate:"required"`
	ManifestPath string `yaml:"manifest_path" validate:"required"`
}

// DriftStatus classifies the outcome of one drift check.
type DriftStatus int

const (
	// DriftUnknown means the check could not be completed (missing local
	// manifest, unreachable registry, malformed response). It is an
	// expected, retryable outcome and never changes control flow.
	DriftUnknown DriftStatus = iota
	// UpToDate means local and remote build identifiers match.
	UpToDate
	// Drifted means the registry publishes a different build than the
	// one recorded locally.
	Drifted
)

// DriftResult is the outcome of Oracle.CheckDrift for one package.
type DriftResult struct {
	Status DriftStatus
	Remote BuildVersion // set when Status == Drifted
	Reason string       // set when Status == DriftUnknown
}

// UpToDateResult reports matching build identifiers.
func UpToDateResult() DriftResult { return DriftResult{Status: UpToDate} }

// DriftedResult reports a remote build differing from the local one.
func DriftedResult(remote BuildVersion) DriftResult {
	return DriftResult{Status: Drifted, Remote: remote}
}

// UnknownResult reports a check that could not be completed.
func UnknownResult(reason string) DriftResult {
	return DriftResult{Status: DriftUnknown, Reason: reason}
}

// Outcome is the terminal result of one orchestrator run. The outer
// supervisor treats every exit the same way; the distinction exists for
// operators reading logs.
type Outcome int

const (
	// OutcomeUpdateTriggered means drift was detected and the configured
	// mode branch ran to completion.
	OutcomeUpdateTriggered Outcome = iota
	// OutcomeProcessDied means the supervised process exited on its own
	// before any update was triggered.
	OutcomeProcessDied
	// OutcomeConfigError means the run never started because startup
	// validation failed.
	OutcomeConfigError
	// OutcomeCanceled means the orchestrator itself was asked to shut
	// down (operator signal) while the supervised process kept running.
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpdateTriggered:
		return "update-triggered"
	case OutcomeProcessDied:
		return "process-died"
	case OutcomeConfigError:
		return "config-error"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}
