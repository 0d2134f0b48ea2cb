package oracle

import (
	"bufio"
	"os"
	"regexp"

	derr "github.com/gamesrv/driftwatch/pkg/errors"
	"github.com/gamesrv/driftwatch/pkg/protocol"
)

// Manifest is the subset of the sync tool's per-package manifest that
// the orchestrator reads. The file is written exclusively by the
// external sync step; the orchestrator never modifies it.
type Manifest struct {
	BuildID protocol.BuildVersion
	// StateFlags is the sync tool's completion state for the last run.
	// "4" means fully installed; everything else is surfaced in logs.
	StateFlags string
}

// kvLine matches the manifest's quoted key/value pairs, e.g.
//
//	"buildid"    "13943510"
//
// Nested block headers carry only a key and are skipped.
var kvLine = regexp.MustCompile(`^\s*"([^"]+)"\s+"([^"]*)"`)

// ReadManifest parses the key/value manifest at path. A missing file is
// returned as ErrCodeManifestMissing so callers can distinguish
// "never installed" from a corrupt record.
func ReadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derr.New(derr.ErrCodeManifestMissing, "oracle.manifest", "no local manifest", err)
		}
		return nil, derr.New(derr.ErrCodeManifestMalformed, "oracle.manifest", "opening manifest", err)
	}
	defer f.Close()

	kv := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := kvLine.FindStringSubmatch(scanner.Text()); m != nil {
			// First occurrence wins; top-level keys precede any
			// duplicates inside nested blocks.
			if _, seen := kv[m[1]]; !seen {
				kv[m[1]] = m[2]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, derr.New(derr.ErrCodeManifestMalformed, "oracle.manifest", "reading manifest", err)
	}

	buildID, ok := kv["buildid"]
	if !ok || buildID == "" {
		return nil, derr.New(derr.ErrCodeManifestMalformed, "oracle.manifest", "manifest has no buildid", nil)
	}
	return &Manifest{
		BuildID:    protocol.BuildVersion(buildID),
		StateFlags: kv["StateFlags"],
	}, nil
}

// CleanState is the StateFlags value of a fully installed package.
const CleanState = "4"
