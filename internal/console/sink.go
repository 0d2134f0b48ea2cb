package console

import (
	"os/exec"

	"github.com/gamesrv/driftwatch/internal/monitor"
	"github.com/gamesrv/driftwatch/pkg/logger"
)

// Sink delivers one line of text into the game server's control channel.
// Delivery is fire-and-forget: a lost warning must never block the
// countdown or the eventual stop.
type Sink interface {
	Send(line string)
}

// TmuxSink types the line into a tmux pane hosting the server console,
// followed by Enter. No response is read back.
type TmuxSink struct {
	target string
	run    func(args ...string) error
}

func NewTmux(target string) *TmuxSink {
	return &TmuxSink{
		target: target,
		run: func(args ...string) error {
			return exec.Command("tmux", args...).Run()
		},
	}
}

func (s *TmuxSink) Send(line string) {
	if err := s.run("send-keys", "-t", s.target, line, "Enter"); err != nil {
		// Swallowed: the console may not be up yet, or the pane gone.
		logger.Log.Warn("Console delivery failed", "target", s.target, "err", err)
		return
	}
	monitor.BroadcastsSent.Inc()
	logger.Log.Debug("Console line sent", "target", s.target, "line", line)
}

// LogSink is used when no console target is configured: lines go to the
// orchestrator log instead of players.
type LogSink struct{}

func (LogSink) Send(line string) {
	monitor.BroadcastsSent.Inc()
	logger.Log.Info("Broadcast (no console configured)", "line", line)
}
