package ordertrack

import (
	"sync"
	"time"
)

// Notice display windows. Success confirmations linger a little longer than
// the "nothing changed" hint; load/save errors never expire on their own.
const (
	SuccessNoticeTTL = 3 * time.Second
	NoOpNoticeTTL    = 2 * time.Second
)

// NoticeKind classifies a transient message.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeInfo
	NoticeError
)

// Notice is one user-visible message.
type Notice struct {
	Kind    NoticeKind
	Message string
}

type noticeEntry struct {
	id     int
	notice Notice
}

// Notices is the transient message center. Success and info notices expire
// on a timer; error notices stay until the next successful operation clears
// them. The timer function is injectable so tests control time.
type Notices struct {
	mu      sync.Mutex
	seq     int
	entries []noticeEntry
	after   func(time.Duration, func())
}

// NewNotices returns a message center on the real clock.
func NewNotices() *Notices {
	return &Notices{
		after: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// SetAfterFunc replaces the expiry timer, for tests.
func (n *Notices) SetAfterFunc(after func(time.Duration, func())) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.after = after
}

func (n *Notices) post(kind NoticeKind, msg string, ttl time.Duration) {
	n.mu.Lock()
	n.seq++
	id := n.seq
	n.entries = append(n.entries, noticeEntry{id: id, notice: Notice{Kind: kind, Message: msg}})
	after := n.after
	n.mu.Unlock()

	if ttl > 0 && after != nil {
		after(ttl, func() { n.dismiss(id) })
	}
}

func (n *Notices) dismiss(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, e := range n.entries {
		if e.id == id {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return
		}
	}
}

// Success posts a confirmation that auto-dismisses after SuccessNoticeTTL.
func (n *Notices) Success(msg string) {
	n.post(NoticeSuccess, msg, SuccessNoticeTTL)
}

// Info posts a hint that auto-dismisses after NoOpNoticeTTL.
func (n *Notices) Info(msg string) {
	n.post(NoticeInfo, msg, NoOpNoticeTTL)
}

// Error posts a sticky failure message.
func (n *Notices) Error(msg string) {
	n.post(NoticeError, msg, 0)
}

// ClearErrors drops sticky error notices, called after the next success.
func (n *Notices) ClearErrors() {
	n.mu.Lock()
	defer n.mu.Unlock()
	kept := n.entries[:0]
	for _, e := range n.entries {
		if e.notice.Kind != NoticeError {
			kept = append(kept, e)
		}
	}
	n.entries = kept
}

// Active returns the currently visible notices, oldest first.
func (n *Notices) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, 0, len(n.entries))
	for _, e := range n.entries {
		out = append(out, e.notice)
	}
	return out
}
