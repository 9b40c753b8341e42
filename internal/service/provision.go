package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/accmint-dev/accmint/internal/config"
	"github.com/accmint-dev/accmint/internal/domain"
	internal_errors "github.com/accmint-dev/accmint/internal/errors"
	"github.com/accmint-dev/accmint/internal/generator"
	"github.com/accmint-dev/accmint/internal/logger"
	"github.com/accmint-dev/accmint/internal/session"
)

// AccountService is the command surface consumed by the HTTP handlers. Each
// operation maps 1:1 onto a bot command.
type AccountService interface {
	Create(ctx context.Context, userID, email string) (*domain.PendingAccount, error)
	Verify(ctx context.Context, userID, code string) (*domain.Credential, error)
	StartBatch(ctx context.Context, userID, email string, count int) (*domain.BatchStatus, error)
	BatchStatus(userID, batchID string) (*domain.BatchStatus, error)
	VerifyBatch(ctx context.Context, userID, batchID, email, code string) (*domain.BatchStatus, error)
	List() ([]domain.Credential, error)
}

// CredentialStore is the append-only persistence collaborator for finalized
// accounts.
type CredentialStore interface {
	Append(cred domain.Credential) error
	All() ([]domain.Credential, error)
}

var _ AccountService = (*Provision)(nil)

type Provision struct {
	wf       *Workflow
	creds    CredentialStore
	sessions *session.Store[*domain.PendingSession]
	batches  *session.Store[*domain.Batch]

	variantCount int
	batchMax     int
	batchExtra   int
}

func NewProvision(
	wf *Workflow,
	creds CredentialStore,
	sessions *session.Store[*domain.PendingSession],
	batches *session.Store[*domain.Batch],
	cfg *config.Public,
) *Provision {
	return &Provision{
		wf:           wf,
		creds:        creds,
		sessions:     sessions,
		batches:      batches,
		variantCount: cfg.VariantCount,
		batchMax:     cfg.BatchMaxCount,
		batchExtra:   cfg.BatchExtraVariants,
	}
}

// Create runs the single-shot flow: derive email variants from the base
// address and attempt each in order until one reaches the code-sent state.
// The resulting pending session replaces any previous one for this user.
func (p *Provision) Create(ctx context.Context, userID, email string) (*domain.PendingAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !generator.ValidEmail(email) {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid email format", StatusCode: http.StatusBadRequest}
	}

	variants := generator.Variations(email, p.variantCount)

	var lastReason string
	for _, variant := range variants {
		cand, err := p.wf.Attempt(ctx, variant)
		if err != nil {
			lastReason = err.Error()
			logger.Log.Info("candidate abandoned, trying next variant",
				"email", variant,
				"reason", lastReason)
			continue
		}

		ps := &domain.PendingSession{Candidate: *cand, CreatedAt: p.sessions.Now()}
		p.sessions.Put(userID, ps)
		view := ps.View()
		return &view, nil
	}

	return nil, &internal_errors.ErrorWithStatusCode{
		Message:    fmt.Sprintf("No email variant could be registered. Last error: %s", lastReason),
		StatusCode: http.StatusBadGateway,
	}
}

// Verify advances the caller's pending session with a human-supplied code.
// On success the credential triple is persisted and the session retired; on
// rejection the session survives so another code can be submitted.
func (p *Provision) Verify(ctx context.Context, userID, code string) (*domain.Credential, error) {
	ps, ok := p.sessions.Get(userID)
	if !ok {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    "No active account creation session. Start one with a create request first",
			StatusCode: http.StatusNotFound,
		}
	}

	if err := p.wf.Finalize(ctx, &ps.Candidate, code); err != nil {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("Verification failed: %s", reasonOf(err)),
			StatusCode: http.StatusUnprocessableEntity,
		}
	}

	cred := domain.Credential{Email: ps.Email, Username: ps.Username, Password: ps.Password}
	if err := p.creds.Append(cred); err != nil {
		logger.Log.Error("failed to persist credential", "email", cred.Email, "error", err)
		return nil, err
	}
	p.sessions.Delete(userID)

	logger.Log.Info("account registered", "email", cred.Email, "username", cred.Username)
	return &cred, nil
}

// List reads back every persisted credential in write order.
func (p *Provision) List() ([]domain.Credential, error) {
	return p.creds.All()
}

func reasonOf(err error) string {
	if se, ok := err.(*internal_errors.StepError); ok {
		return se.Reason
	}
	return err.Error()
}
