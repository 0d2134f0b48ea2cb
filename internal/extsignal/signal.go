package extsignal

import (
	"os"

	"github.com/gamesrv/driftwatch/pkg/logger"
)

// Signal is an edge-triggered, consuming extension-request channel. The
// grace countdown calls Consume once per tick; a true result grants one
// extension and clears the underlying condition, so requests arriving
// between two consumes coalesce into a single extension.
type Signal interface {
	Consume() bool
}

// FileMarker is the default transport: any external actor requests an
// extension by creating a file at a well-known path. Observation removes
// the file.
type FileMarker struct {
	path string
}

func NewFileMarker(path string) *FileMarker {
	return &FileMarker{path: path}
}

func (m *FileMarker) Consume() bool {
	err := os.Remove(m.path)
	if err == nil {
		logger.Log.Info("Extension marker consumed", "path", m.path)
		return true
	}
	if !os.IsNotExist(err) {
		// A marker that cannot be removed must not grant: it would be
		// re-observed and re-granted on every subsequent tick.
		logger.Log.Warn("Extension marker could not be removed", "path", m.path, "err", err)
	}
	return false
}
