package domain

import "time"

// PendingSession is a candidate whose verification code has been dispatched
// and which now waits for human input. Single-shot sessions are keyed by the
// requesting user id in the session registry.
type PendingSession struct {
	Candidate
	CreatedAt time.Time
}

func (s *PendingSession) View() PendingAccount {
	return PendingAccount{Email: s.Email, Username: s.Username, Password: s.Password}
}
