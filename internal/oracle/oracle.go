package oracle

import (
	"context"

	"github.com/gamesrv/driftwatch/pkg/logger"
	"github.com/gamesrv/driftwatch/pkg/protocol"
)

// Oracle answers one question: does the locally installed build of a
// package differ from what the registry currently publishes? It is a
// pure read; the local manifest is owned by the external sync step.
type Oracle struct {
	registry RegistryClient
	branch   string
}

func New(registry RegistryClient, branch string) *Oracle {
	return &Oracle{registry: registry, branch: branch}
}

// CheckDrift compares the local and remote build identifiers for ref.
// Every failure mode is folded into an Unknown result rather than an
// error: the poll loop must tolerate any number of consecutive failed
// checks, and only a positive drift detection changes control flow.
// Tokens are compared for opaque equality only; nothing assumes a newer
// build has a larger identifier.
func (o *Oracle) CheckDrift(ctx context.Context, ref protocol.PackageRef) protocol.DriftResult {
	m, err := ReadManifest(ref.ManifestPath)
	if err != nil {
		return protocol.UnknownResult(err.Error())
	}
	if m.StateFlags != "" && m.StateFlags != CleanState {
		// Last sync did not finish cleanly. Drift checking still works
		// off whatever buildid was recorded; the sync tool sorts the
		// rest out on its next run.
		logger.Log.Info("Manifest reports unclean sync state", "package", ref.Name, "state", m.StateFlags)
	}

	remote, err := o.registry.LatestBuild(ctx, ref, o.branch)
	if err != nil {
		return protocol.UnknownResult(err.Error())
	}

	if m.BuildID != remote {
		return protocol.DriftedResult(remote)
	}
	return protocol.UpToDateResult()
}
