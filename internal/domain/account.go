package domain

// StepStatus classifies the outcome of one upstream call.
type StepStatus int

const (
	StatusOk StepStatus = iota
	StatusRejected
	StatusTransportError
)

// StepResult is the typed outcome of a single account-service call.
// The upstream protocol signals success with code 0 and everything else is a
// rejection; transport failures are folded into their own status so callers
// that care can tell them apart. The workflow treats both non-Ok statuses
// uniformly.
type StepResult struct {
	Status StepStatus
	Reason string
	Ticket string // populated by ticket issuance only
}

func (r StepResult) Ok() bool {
	return r.Status == StatusOk
}

// Registration carries everything the final verify-and-register call needs.
// PasswordDigest is the keyed one-way digest of the candidate password; the
// clear password never goes on the wire.
type Registration struct {
	Email          string
	Code           string
	Username       string
	PasswordDigest string
	DeviceID       string
	Ticket         string
}

// Candidate is one registration attempt: an email variant bound to the device
// identity, ticket, username and password secured for it. Immutable once the
// verification code is dispatched.
type Candidate struct {
	Email    string
	DeviceID string
	Ticket   string
	Username string
	Password string
}

// Credential is a finalized account as persisted to the credential store.
type Credential struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// PendingAccount is the user-facing view of a session awaiting its code.
type PendingAccount struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// FailedAttempt records an abandoned candidate with a displayable reason.
type FailedAttempt struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}
