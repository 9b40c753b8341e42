package domain

import (
	"sync"
	"time"
)

// Batch tracks one user request for several accounts pursued together.
//
// Invariant: an email lives in at most one of queue, pending, completed,
// failed or abandoned at any time. The scheduler's goal state is
// len(pending)+len(completed) == target, topped up from the queue whenever a
// slot frees.
//
// All mutators take the internal lock: verification and status requests
// arrive over HTTP and can race the scheduler topping up the same batch.
type Batch struct {
	mu    sync.Mutex
	runMu sync.Mutex

	ID        string
	OwnerID   string
	BaseEmail string
	Target    int
	CreatedAt time.Time

	queue     []string
	pending   map[string]*PendingSession
	completed []string
	failed    []FailedAttempt
	abandoned []string
}

// BatchStatus is a point-in-time snapshot rendered for the UI collaborator.
type BatchStatus struct {
	ID              string           `json:"batch_id"`
	BaseEmail       string           `json:"base_email"`
	Target          int              `json:"target"`
	QueuedRemaining int              `json:"queued_remaining"`
	PendingCount    int              `json:"pending_count"`
	CompletedCount  int              `json:"completed_count"`
	FailedCount     int              `json:"failed_count"`
	Pending         []PendingAccount `json:"pending"` // first 5 sessions awaiting a code
	MorePending     int              `json:"more_pending"`
	Failed          []FailedAttempt  `json:"failed"`
	Done            bool             `json:"done"`
}

const statusPendingLimit = 5

func NewBatch(id, ownerID, baseEmail string, target int, candidates []string, now time.Time) *Batch {
	queue := make([]string, len(candidates))
	copy(queue, candidates)
	return &Batch{
		ID:        id,
		OwnerID:   ownerID,
		BaseEmail: baseEmail,
		Target:    target,
		CreatedAt: now,
		queue:     queue,
		pending:   make(map[string]*PendingSession),
	}
}

// LockRun serializes scheduler passes over this batch. Candidate attempts
// within one batch must never interleave, even when concurrent verification
// outcomes both trigger a top-up.
func (b *Batch) LockRun() { b.runMu.Lock() }

func (b *Batch) UnlockRun() { b.runMu.Unlock() }

// NextCandidate pops the next queued email if the batch still needs one.
func (b *Batch) NextCandidate() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending)+len(b.completed) >= b.Target || len(b.queue) == 0 {
		return "", false
	}
	email := b.queue[0]
	b.queue = b.queue[1:]
	return email, true
}

func (b *Batch) AddPending(s *PendingSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[s.Email] = s
}

func (b *Batch) RecordFailure(email, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failed = append(b.failed, FailedAttempt{Email: email, Reason: reason})
}

// Session returns the pending session for email, if any.
func (b *Batch) Session(email string) (*PendingSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.pending[email]
	return s, ok
}

// Complete moves email from pending to completed.
func (b *Batch) Complete(email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.pending[email]; !ok {
		return
	}
	delete(b.pending, email)
	b.completed = append(b.completed, email)
}

// Fail moves email from pending to failed, keeping the reason for display.
func (b *Batch) Fail(email, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.pending[email]; !ok {
		return
	}
	delete(b.pending, email)
	b.failed = append(b.failed, FailedAttempt{Email: email, Reason: reason})
}

// Done reports whether every candidate reached a terminal state: nothing
// queued and nothing awaiting verification.
func (b *Batch) Done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue) == 0 && len(b.pending) == 0
}

// Abandon forfeits all still-pending sessions, e.g. on batch expiry. The
// forfeited emails are accounted in the abandoned bucket rather than silently
// dropped, and returned so the caller can log them.
func (b *Batch) Abandon() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	emails := make([]string, 0, len(b.pending))
	for email := range b.pending {
		emails = append(emails, email)
	}
	b.abandoned = append(b.abandoned, emails...)
	b.pending = make(map[string]*PendingSession)
	return emails
}

func (b *Batch) Snapshot() *BatchStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := &BatchStatus{
		ID:              b.ID,
		BaseEmail:       b.BaseEmail,
		Target:          b.Target,
		QueuedRemaining: len(b.queue),
		PendingCount:    len(b.pending),
		CompletedCount:  len(b.completed),
		FailedCount:     len(b.failed),
		Failed:          append([]FailedAttempt(nil), b.failed...),
		Done:            len(b.queue) == 0 && len(b.pending) == 0,
	}
	for _, s := range b.pending {
		if len(st.Pending) >= statusPendingLimit {
			st.MorePending = len(b.pending) - statusPendingLimit
			break
		}
		st.Pending = append(st.Pending, s.View())
	}
	return st
}
