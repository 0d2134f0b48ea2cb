package procwatch

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"syscall"

	derr "github.com/gamesrv/driftwatch/pkg/errors"
	"github.com/gamesrv/driftwatch/pkg/logger"
)

// Handle abstracts the supervised game-server process. The orchestrator
// never launches or owns the process; it only probes liveness and, when
// an update requires it, asks the process to stop.
type Handle interface {
	// IsAlive reports whether the supervised process still exists.
	IsAlive() bool
	// RequestTermination sends a graceful stop request. It does not
	// block or confirm; a process that is already gone is success.
	RequestTermination() error
}

// PIDHandle probes a process captured by pid at orchestrator start. If
// the underlying process is replaced without restarting the orchestrator
// the handle goes stale; the outer supervisor restarting both together
// is what keeps that from mattering.
type PIDHandle struct {
	pid int
}

func NewPID(pid int) *PIDHandle {
	return &PIDHandle{pid: pid}
}

// FromPIDFile captures the supervised process from a pid file. Read
// exactly once; failure here is a startup configuration error.
func FromPIDFile(path string) (*PIDHandle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derr.New(derr.ErrCodePIDUnreadable, "procwatch.capture", "reading pid file", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return nil, derr.New(derr.ErrCodePIDUnreadable, "procwatch.capture", "pid file does not contain a pid", err)
	}
	return NewPID(pid), nil
}

func (h *PIDHandle) PID() int { return h.pid }

// IsAlive probes with signal 0. EPERM still means the process exists.
func (h *PIDHandle) IsAlive() bool {
	err := syscall.Kill(h.pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// RequestTermination sends SIGTERM. A vanished process (ESRCH) is the
// goal already achieved, not an error.
func (h *PIDHandle) RequestTermination() error {
	logger.Log.Info("Requesting termination", "pid", h.pid)
	err := syscall.Kill(h.pid, syscall.SIGTERM)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return derr.New(derr.ErrCodeTerminateFailed, "procwatch.terminate", "sending SIGTERM", err)
}
