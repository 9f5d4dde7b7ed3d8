// Package countdown mirrors a server-issued expiry locally for user feedback.
// The display is advisory only: the server re-checks the window on verify and
// its decision is the one that binds.
package countdown

import (
	"sync"
	"time"
)

// Presenter ticks down once per second toward a server-issued deadline and
// reports the remaining seconds. A single goroutine owns the loop; Stop and
// Reset cancel it synchronously, so no callback fires after they return.
type Presenter struct {
	OnTick    func(remaining int)
	OnExpired func()

	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

func New(onTick func(remaining int), onExpired func()) *Presenter {
	return &Presenter{
		OnTick:    onTick,
		OnExpired: onExpired,
		interval:  time.Second,
		now:       time.Now,
	}
}

// Start begins counting down toward expiresAt as returned by the request
// endpoint. A running countdown is cancelled first, so Start doubles as the
// resend path.
func (p *Presenter) Start(expiresAt time.Time) {
	p.Stop()

	p.mu.Lock()
	stop := make(chan struct{})
	done := make(chan struct{})
	p.stopCh = stop
	p.doneCh = done
	p.mu.Unlock()

	go p.loop(expiresAt, stop, done)
}

// Reset restarts the countdown for a fresh code.
func (p *Presenter) Reset(expiresAt time.Time) {
	p.Start(expiresAt)
}

// Stop cancels the countdown. It blocks until the loop goroutine has exited:
// once Stop returns, neither OnTick nor OnExpired will fire again.
func (p *Presenter) Stop() {
	p.mu.Lock()
	stop := p.stopCh
	done := p.doneCh
	p.stopCh = nil
	p.doneCh = nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (p *Presenter) loop(expiresAt time.Time, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	remaining := p.remaining(expiresAt)
	p.OnTick(remaining)
	if remaining <= 0 {
		p.OnExpired()
		return
	}

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			remaining = p.remaining(expiresAt)
			p.OnTick(remaining)
			if remaining <= 0 {
				// локальный ноль: UI блокирует ввод кода и предлагает resend
				p.OnExpired()
				return
			}
		}
	}
}

// remaining rounds up, so the display shows 300 right after the request
// and 1 during the final second.
func (p *Presenter) remaining(expiresAt time.Time) int {
	d := expiresAt.Sub(p.now())
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
