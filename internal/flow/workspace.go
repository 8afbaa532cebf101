package flow

import (
	"sync"
	"time"

	"github.com/nirvista/onboard/internal/notification"
)

// NavState is the hand-off a step passes to the step it navigates to. It
// lives only in memory; PendingSignup is the durable fallback.
type NavState struct {
	Mobile  string
	UserID  string
	Email   string
	Channel string
}

// Workspace is the in-memory state of one visitor: navigation hand-off,
// pending notices and KYC documents.
type Workspace struct {
	mu       sync.Mutex
	nav      *NavState
	notices  []notification.Message
	docs     map[DocumentType]DocumentState
	metadata Metadata
	lastSeen time.Time
}

func newWorkspace(now time.Time) *Workspace {
	return &Workspace{docs: make(map[DocumentType]DocumentState), lastSeen: now}
}

// SetNav records the navigation hand-off.
func (w *Workspace) SetNav(nav NavState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nav = &nav
}

// Nav returns the navigation hand-off, if any.
func (w *Workspace) Nav() (NavState, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.nav == nil {
		return NavState{}, false
	}
	return *w.nav, true
}

// ClearNav drops the navigation hand-off.
func (w *Workspace) ClearNav() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nav = nil
}

// TakeNotices returns and clears pending notices.
func (w *Workspace) TakeNotices() []notification.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.notices
	w.notices = nil
	return out
}

func (w *Workspace) pushNotice(m notification.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notices = append(w.notices, m)
}

// Documents returns a snapshot of every required document in display order.
func (w *Workspace) Documents() []DocumentState {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]DocumentState, 0, len(RequiredDocuments))
	for _, spec := range RequiredDocuments {
		out = append(out, w.documentLocked(spec.Type))
	}
	return out
}

// Document returns the state of one document.
func (w *Workspace) Document(t DocumentType) DocumentState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.documentLocked(t)
}

func (w *Workspace) documentLocked(t DocumentType) DocumentState {
	if doc, ok := w.docs[t]; ok {
		return doc
	}
	return DocumentState{Type: t, Label: t.Label()}
}

func (w *Workspace) updateDocument(t DocumentType, mutate func(*DocumentState)) DocumentState {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc := w.documentLocked(t)
	mutate(&doc)
	w.docs[t] = doc
	return doc
}

// SetMetadata remembers the last metadata the visitor entered.
func (w *Workspace) SetMetadata(m Metadata) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.metadata = m
}

// Metadata returns the last metadata the visitor entered.
func (w *Workspace) Metadata() Metadata {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metadata
}

// Workspaces indexes visitor workspaces by session id.
type Workspaces struct {
	mu    sync.Mutex
	items map[string]*Workspace
	now   func() time.Time
}

// NewWorkspaces creates an empty index.
func NewWorkspaces() *Workspaces {
	return &Workspaces{items: make(map[string]*Workspace), now: time.Now}
}

// Get returns the workspace for sessionID, creating it on first use.
func (ws *Workspaces) Get(sessionID string) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	now := ws.now()
	w, ok := ws.items[sessionID]
	if !ok {
		w = newWorkspace(now)
		ws.items[sessionID] = w
	}
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
	return w
}

// Push implements notification.Inbox.
func (ws *Workspaces) Push(sessionID string, message notification.Message) {
	ws.Get(sessionID).pushNotice(message)
}

// Sweep drops workspaces not used for longer than idle and reports how many
// were removed.
func (ws *Workspaces) Sweep(idle time.Duration) int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	cutoff := ws.now().Add(-idle)
	removed := 0
	for id, w := range ws.items {
		w.mu.Lock()
		stale := w.lastSeen.Before(cutoff)
		w.mu.Unlock()
		if stale {
			delete(ws.items, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live workspaces.
func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.items)
}
