package console

import (
	"errors"
	"testing"
)

func TestTmuxSink_SendArgs(t *testing.T) {
	var got []string
	s := NewTmux("gameserver:0.0")
	s.run = func(args ...string) error {
		got = append([]string{}, args...)
		return nil
	}

	s.Send("say Server restarting in 60 seconds")

	want := []string{"send-keys", "-t", "gameserver:0.0", "say Server restarting in 60 seconds", "Enter"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d args, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Arg %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestTmuxSink_DeliveryFailureIsSwallowed(t *testing.T) {
	s := NewTmux("missing:0")
	s.run = func(args ...string) error {
		return errors.New("no server running")
	}

	// Must not panic or propagate.
	s.Send("say hello")
}

func TestLogSink(t *testing.T) {
	LogSink{}.Send("say hello")
}
