package countdown

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gamesrv/driftwatch/internal/procwatch"
)

type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingSink) Send(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recordingSink) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.lines...)
}

// scriptedSignal grants an extension on chosen Consume calls. The tick
// loop is single-threaded, so no locking is needed.
type scriptedSignal struct {
	calls  int
	fireOn map[int]bool
}

func (s *scriptedSignal) Consume() bool {
	s.calls++
	return s.fireOn[s.calls]
}

func fastCountdown(base int, sink Sink, proc Liveness, ext ExtensionSignal) *Countdown {
	return New(base, sink, proc, ext).WithTiming(time.Millisecond, 0)
}

func TestRun_ThresholdSequence(t *testing.T) {
	// Base 60: the 300/120 thresholds are above the base and must be
	// skipped; observed warnings are 60,30,10 then the final band.
	sink := &recordingSink{}
	proc := procwatch.NewFake(true)

	outcome := fastCountdown(60, sink, proc, nil).Run()
	if outcome != Expired {
		t.Fatalf("Expected Expired, got %v", outcome)
	}

	want := []string{
		"say SERVER UPDATE REQUIRED. Restarting in 1 minute.",
		"say Restarting in 1 minute.",
		"say Restarting in 30 seconds.",
		"say Restarting in 10 seconds.",
		"say Restarting in 5 seconds.",
		"say Restarting in 4 seconds.",
		"say Restarting in 3 seconds.",
		"say Restarting in 2 seconds.",
		"say Restarting in 1 second.",
		"say Restarting NOW.",
	}
	got := sink.all()
	if len(got) != len(want) {
		t.Fatalf("Expected %d broadcasts, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Broadcast %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRun_ShortBaseSequence(t *testing.T) {
	sink := &recordingSink{}
	proc := procwatch.NewFake(true)

	outcome := fastCountdown(5, sink, proc, nil).Run()
	if outcome != Expired {
		t.Fatalf("Expected Expired, got %v", outcome)
	}

	got := sink.all()
	// start(5), 5, 4, 3, 2, 1, final
	if len(got) != 7 {
		t.Fatalf("Expected 7 broadcasts, got %d: %v", len(got), got)
	}
	if got[0] != "say SERVER UPDATE REQUIRED. Restarting in 5 seconds." {
		t.Errorf("Unexpected start broadcast %q", got[0])
	}
	if got[len(got)-1] != "say Restarting NOW." {
		t.Errorf("Unexpected final broadcast %q", got[len(got)-1])
	}
}

func TestRun_ExtensionIsAdditive(t *testing.T) {
	sink := &recordingSink{}
	proc := procwatch.NewFake(true)
	// Requests granted on the first two ticks: base 60 + 60 + 60.
	sig := &scriptedSignal{fireOn: map[int]bool{1: true, 2: true}}

	c := fastCountdown(60, sink, proc, sig)
	start := time.Now()
	if outcome := c.Run(); outcome != Expired {
		t.Fatalf("Expected Expired, got %v", outcome)
	}
	elapsed := time.Since(start)

	// The two extensions coalesce only per tick, so both are granted on
	// the first two ticks; total run is ~180 ticks.
	if elapsed < 150*time.Millisecond {
		t.Errorf("Countdown finished after %v; extensions did not add time", elapsed)
	}

	var extensions []string
	for _, line := range sink.all() {
		if strings.Contains(line, "delayed") {
			extensions = append(extensions, line)
		}
	}
	if len(extensions) != 2 {
		t.Fatalf("Expected 2 extension broadcasts, got %d: %v", len(extensions), extensions)
	}
	if extensions[0] != "say Restart delayed. Now restarting in 2 minutes." {
		t.Errorf("First extension broadcast %q", extensions[0])
	}
	if extensions[1] != "say Restart delayed. Now restarting in 179 seconds." {
		t.Errorf("Second extension broadcast %q", extensions[1])
	}
}

func TestRun_ThresholdsRefireAfterExtension(t *testing.T) {
	sink := &recordingSink{}
	proc := procwatch.NewFake(true)
	// Extend on the second tick: remaining goes 4 -> 9, so the 5-second
	// warning already fired once and fires again on re-entry.
	sig := &scriptedSignal{fireOn: map[int]bool{2: true}}

	if outcome := fastCountdown(5, sink, proc, sig).Run(); outcome != Expired {
		t.Fatalf("Expected Expired, got %v", outcome)
	}

	count5 := 0
	for _, line := range sink.all() {
		if line == "say Restarting in 5 seconds." {
			count5++
		}
	}
	if count5 != 2 {
		t.Errorf("Expected the 5-second warning to fire twice (re-entry after extension), got %d", count5)
	}
}

func TestRun_AbortOnProcessDeath(t *testing.T) {
	sink := &recordingSink{}
	proc := procwatch.NewFake(false)

	if outcome := fastCountdown(60, sink, proc, nil).Run(); outcome != Aborted {
		t.Fatalf("Expected Aborted, got %v", outcome)
	}
	// The start announcement precedes the first liveness check; the
	// abort itself adds no broadcast.
	if got := sink.all(); len(got) != 1 {
		t.Errorf("Expected only the start broadcast, got %v", got)
	}
	if proc.Terminations() != 0 {
		t.Errorf("Abort must not terminate anything, got %d requests", proc.Terminations())
	}
}

func TestRun_AbortMidCountdown(t *testing.T) {
	sink := &recordingSink{}
	proc := procwatch.NewFake(true)

	c := New(60, sink, proc, nil).WithTiming(5*time.Millisecond, 0)
	go func() {
		time.Sleep(40 * time.Millisecond)
		proc.SetAlive(false)
	}()

	if outcome := c.Run(); outcome != Aborted {
		t.Fatalf("Expected Aborted, got %v", outcome)
	}
	if proc.Terminations() != 0 {
		t.Errorf("Abort must not terminate anything, got %d requests", proc.Terminations())
	}
}

func TestWarnAt(t *testing.T) {
	fires := []int{300, 120, 60, 30, 10, 5, 4, 3, 2, 1}
	for _, v := range fires {
		if !warnAt(v) {
			t.Errorf("Expected warning at %d", v)
		}
	}
	silent := []int{301, 299, 61, 59, 11, 6, 0, -1}
	for _, v := range silent {
		if warnAt(v) {
			t.Errorf("Expected no warning at %d", v)
		}
	}
}

func TestFormatSpan(t *testing.T) {
	cases := map[int]string{
		1:   "1 second",
		30:  "30 seconds",
		60:  "1 minute",
		90:  "90 seconds",
		120: "2 minutes",
		300: "5 minutes",
	}
	for in, want := range cases {
		if got := formatSpan(in); got != want {
			t.Errorf("formatSpan(%d) = %q, want %q", in, got, want)
		}
	}
}
