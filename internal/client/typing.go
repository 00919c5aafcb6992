package client

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	chatdomain "craft_marketplace_service/internal/chat/domain"
)

// Typing timer defaults
const (
	// TypingIdleDelay keystroke silence before the local "stopped typing"
	TypingIdleDelay = 2 * time.Second
	// TypingExpiry remote typers are force-expired after this even if
	// their stop event is lost
	TypingExpiry = 5 * time.Second
)

// TypingTracker local typing emitter plus remote typer set for one room
type TypingTracker struct {
	selfName string

	// IdleDelay and Expiry overridable for tests
	IdleDelay time.Duration
	Expiry    time.Duration

	// Emit sends the local typing state to the transport
	Emit func(typing bool)
	// OnChange runs after the remote set changes
	OnChange func()

	mu         sync.Mutex
	typing     bool
	idleTimer  *time.Timer
	remote     map[string]chatdomain.TypingIndicator
	expiry     map[string]*time.Timer
	generation int
}

// NewTypingTracker create TypingTracker; selfName filters out the local
// user's own indicator echoed back by the server
func NewTypingTracker(selfName string) *TypingTracker {
	return &TypingTracker{
		selfName:  selfName,
		IdleDelay: TypingIdleDelay,
		Expiry:    TypingExpiry,
		remote:    make(map[string]chatdomain.TypingIndicator),
		expiry:    make(map[string]*time.Timer),
	}
}

// Keystroke call on every local input change. The first one emits
// "typing", silence for IdleDelay emits "stopped".
func (t *TypingTracker) Keystroke() {
	t.mu.Lock()
	emit := t.Emit
	first := !t.typing
	t.typing = true
	if t.idleTimer != nil {
		t.idleTimer.Stop()
	}
	t.idleTimer = time.AfterFunc(t.IdleDelay, t.idleFired)
	t.mu.Unlock()

	if first && emit != nil {
		emit(true)
	}
}

func (t *TypingTracker) idleFired() {
	t.mu.Lock()
	wasTyping := t.typing
	t.typing = false
	t.idleTimer = nil
	emit := t.Emit
	t.mu.Unlock()

	if wasTyping && emit != nil {
		emit(false)
	}
}

// Stop call on submit or blur; cancels the idle timer and emits "stopped"
// if a typing state was active
func (t *TypingTracker) Stop() {
	t.mu.Lock()
	wasTyping := t.typing
	t.typing = false
	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}
	emit := t.Emit
	t.mu.Unlock()

	if wasTyping && emit != nil {
		emit(false)
	}
}

// HandleRemote apply one typing event from the transport. The local
// user's own echo is ignored by normalized name compare.
func (t *TypingTracker) HandleRemote(ind chatdomain.TypingIndicator) {
	if normalizeName(ind.UserName) == normalizeName(t.selfName) {
		return
	}

	t.mu.Lock()
	if ind.Typing {
		t.remote[ind.UserID] = ind
		if old := t.expiry[ind.UserID]; old != nil {
			old.Stop()
		}
		userID := ind.UserID
		gen := t.generation
		t.expiry[userID] = time.AfterFunc(t.Expiry, func() {
			t.expire(userID, gen)
		})
	} else {
		delete(t.remote, ind.UserID)
		if old := t.expiry[ind.UserID]; old != nil {
			old.Stop()
			delete(t.expiry, ind.UserID)
		}
	}
	cb := t.OnChange
	t.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// expire drop a remote typer whose stop event never arrived
func (t *TypingTracker) expire(userID string, gen int) {
	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		return
	}
	_, present := t.remote[userID]
	delete(t.remote, userID)
	delete(t.expiry, userID)
	cb := t.OnChange
	t.mu.Unlock()
	if present && cb != nil {
		cb()
	}
}

// Reset clear all state on room switch
func (t *TypingTracker) Reset() {
	t.mu.Lock()
	t.typing = false
	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}
	for _, timer := range t.expiry {
		timer.Stop()
	}
	t.remote = make(map[string]chatdomain.TypingIndicator)
	t.expiry = make(map[string]*time.Timer)
	// stale expiry callbacks from the previous room must not fire
	t.generation++
	t.mu.Unlock()
}

// Typers names of remote users currently typing, sorted for stable output
func (t *TypingTracker) Typers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.remote))
	for _, ind := range t.remote {
		names = append(names, ind.UserName)
	}
	sort.Strings(names)
	return names
}

// Summary render the indicator line: one name, two names, or a collective
// phrase for three and more
func (t *TypingTracker) Summary() string {
	names := t.Typers()
	switch len(names) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s is typing...", names[0])
	case 2:
		return fmt.Sprintf("%s and %s are typing...", names[0], names[1])
	default:
		return "Several people are typing..."
	}
}

// normalizeName trim and lowercase for self comparison
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
