package service

import (
	"context"

	"github.com/accmint-dev/accmint/internal/domain"
	internal_errors "github.com/accmint-dev/accmint/internal/errors"
	"github.com/accmint-dev/accmint/internal/generator"
	"github.com/accmint-dev/accmint/internal/logger"
)

// AccountClient is the external account service: five single-exchange
// operations keyed by (device id, ticket) context after ticket issuance.
type AccountClient interface {
	CreateTicket(ctx context.Context, deviceID string) domain.StepResult
	CheckEmail(ctx context.Context, email, deviceID, ticket string) domain.StepResult
	CheckUsername(ctx context.Context, username, deviceID, ticket string) domain.StepResult
	SendCode(ctx context.Context, email, deviceID, ticket string) domain.StepResult
	Register(ctx context.Context, reg domain.Registration) domain.StepResult
}

// Digest transforms a password into its wire form.
type Digest interface {
	Sum(password string) string
}

// Workflow drives one candidate email through the ordered provisioning
// protocol:
//
//	Start -> TicketIssued -> EmailChecked -> UsernameChecked -> CodeSent
//
// then, once a human supplies the code, CodeSent -> Verified | Rejected.
// Steps never run out of order and a failed step abandons the candidate.
type Workflow struct {
	client AccountClient
	digest Digest
}

func NewWorkflow(client AccountClient, digest Digest) *Workflow {
	return &Workflow{client: client, digest: digest}
}

// Attempt runs the automated portion of the protocol for one email variant
// with a fresh device identity. On success the returned candidate has a
// verification code in flight; any step failure returns a StepError naming
// the step and the upstream reason.
//
// Username availability is checked before the code is dispatched on purpose:
// the code is single-use and tied to the email, and wasting it on a taken
// username would force a second dispatch. The username check is retried
// exactly once with a numeral-suffixed name; email availability is never
// rechecked in between.
func (w *Workflow) Attempt(ctx context.Context, email string) (*domain.Candidate, error) {
	deviceID := generator.DeviceID()

	ticketRes := w.client.CreateTicket(ctx, deviceID)
	if !ticketRes.Ok() {
		return nil, stepErr("create_ticket", email, ticketRes)
	}
	if ticketRes.Ticket == "" {
		return nil, &internal_errors.StepError{Step: "create_ticket", Email: email, Reason: "no ticket returned"}
	}
	ticket := ticketRes.Ticket

	if res := w.client.CheckEmail(ctx, email, deviceID, ticket); !res.Ok() {
		return nil, stepErr("check_email", email, res)
	}

	username := generator.Username(generator.UsernameLen)
	if res := w.client.CheckUsername(ctx, username, deviceID, ticket); !res.Ok() {
		username = generator.UsernameRetry(generator.UsernameLen)
		if res := w.client.CheckUsername(ctx, username, deviceID, ticket); !res.Ok() {
			return nil, &internal_errors.StepError{Step: "check_username", Email: email, Reason: "no available username found"}
		}
	}

	// password has no dependency on earlier steps; generated only now that
	// the username is settled
	password := generator.Password()

	if res := w.client.SendCode(ctx, email, deviceID, ticket); !res.Ok() {
		return nil, stepErr("send_code", email, res)
	}

	logger.Log.Info("verification code dispatched",
		"email", email,
		"username", username)

	return &domain.Candidate{
		Email:    email,
		DeviceID: deviceID,
		Ticket:   ticket,
		Username: username,
		Password: password,
	}, nil
}

// Finalize submits the human-supplied code for a pending candidate. The
// ticket, device, username and password are held constant; a rejection is
// terminal for this attempt but the caller may resubmit another code with
// the same candidate.
func (w *Workflow) Finalize(ctx context.Context, cand *domain.Candidate, code string) error {
	res := w.client.Register(ctx, domain.Registration{
		Email:          cand.Email,
		Code:           code,
		Username:       cand.Username,
		PasswordDigest: w.digest.Sum(cand.Password),
		DeviceID:       cand.DeviceID,
		Ticket:         cand.Ticket,
	})
	if !res.Ok() {
		return stepErr("verify_code", cand.Email, res)
	}
	return nil
}

func stepErr(step, email string, res domain.StepResult) error {
	reason := res.Reason
	if reason == "" {
		reason = "unknown error"
	}
	return &internal_errors.StepError{Step: step, Email: email, Reason: reason}
}
