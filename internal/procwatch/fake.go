package procwatch

import "sync"

// Fake is a scriptable Handle for tests. Liveness can be flipped at any
// point and termination requests are counted.
type Fake struct {
	mu           sync.Mutex
	alive        bool
	terminations int

	// DieOnTerminate makes the fake report dead after the first
	// termination request, mimicking a server that honors SIGTERM.
	DieOnTerminate bool
}

func NewFake(alive bool) *Fake {
	return &Fake{alive: alive}
}

func (f *Fake) IsAlive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive
}

func (f *Fake) SetAlive(alive bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = alive
}

func (f *Fake) RequestTermination() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminations++
	if f.DieOnTerminate {
		f.alive = false
	}
	return nil
}

// Terminations reports how many termination requests were received.
func (f *Fake) Terminations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terminations
}
