package extsignal

import (
	"net"
	"os"
	"sync"

	derr "github.com/gamesrv/driftwatch/pkg/errors"
	"github.com/gamesrv/driftwatch/pkg/logger"
)

// SocketListener accepts extension requests over a unix domain socket:
// any connection (e.g. from an operator's `nc -U`) arms one pending
// extension. The connection is closed immediately; nothing is read.
type SocketListener struct {
	path string
	ln   net.Listener

	mu    sync.Mutex
	armed bool
}

func NewSocketListener(path string) (*SocketListener, error) {
	if _, err := os.Stat(path); err == nil {
		os.Remove(path)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, derr.New(derr.ErrCodeSignalSetup, "extsignal.socket", "binding extension socket", err)
	}
	os.Chmod(path, 0o700)

	s := &SocketListener{path: path, ln: ln}
	go s.accept()
	return s, nil
}

func (s *SocketListener) accept() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			// Listener closed.
			return
		}
		conn.Close()
		s.mu.Lock()
		s.armed = true
		s.mu.Unlock()
		logger.Log.Info("Extension requested via socket", "path", s.path)
	}
}

func (s *SocketListener) Consume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	armed := s.armed
	s.armed = false
	return armed
}

func (s *SocketListener) Close() error {
	err := s.ln.Close()
	os.Remove(s.path)
	return err
}
