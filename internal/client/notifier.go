package client

import (
	"sync"
	"time"
)

// ToastDuration is how long a notification stays visible.
const ToastDuration = 2 * time.Second

// Notifier shows one transient message at a time. A newer message replaces
// the current one and restarts the timer.
type Notifier struct {
	duration time.Duration
	onChange func(msg string)

	mu    sync.Mutex
	msg   string
	timer *time.Timer
	seq   uint64
}

// NewNotifier returns a notifier that reports the visible message (or ""
// once it expires) to onChange.
func NewNotifier(duration time.Duration, onChange func(msg string)) *Notifier {
	if duration <= 0 {
		duration = ToastDuration
	}
	return &Notifier{duration: duration, onChange: onChange}
}

func (n *Notifier) Show(msg string) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.msg = msg
	n.timer = time.AfterFunc(n.duration, func() { n.expire(seq) })
	n.mu.Unlock()

	n.notify(msg)
}

func (n *Notifier) Message() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.msg
}

func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	if seq != n.seq {
		n.mu.Unlock()
		return
	}
	n.msg = ""
	n.timer = nil
	n.mu.Unlock()

	n.notify("")
}

func (n *Notifier) notify(msg string) {
	if n.onChange != nil {
		n.onChange(msg)
	}
}
