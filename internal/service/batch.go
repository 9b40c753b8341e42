package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/accmint-dev/accmint/internal/domain"
	internal_errors "github.com/accmint-dev/accmint/internal/errors"
	"github.com/accmint-dev/accmint/internal/generator"
	"github.com/accmint-dev/accmint/internal/logger"
	"github.com/google/uuid"
)

// StartBatch creates a batch of count accounts from variants of the base
// email and drives candidates until count sessions await verification or the
// candidate pool runs dry. Candidates are processed strictly sequentially;
// the extra variants beyond count are failure headroom.
func (p *Provision) StartBatch(ctx context.Context, userID, email string, count int) (*domain.BatchStatus, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !generator.ValidEmail(email) {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid email format", StatusCode: http.StatusBadRequest}
	}
	if count < 1 || count > p.batchMax {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("Count must be between 1 and %d", p.batchMax),
			StatusCode: http.StatusBadRequest,
		}
	}

	variants := generator.Variations(email, count+p.batchExtra)
	target := count
	if len(variants) < target {
		// non-gmail bases yield a single candidate
		target = len(variants)
	}

	b := domain.NewBatch(uuid.NewString(), userID, email, target, variants, p.batches.Now())
	p.runQueue(ctx, b)
	p.batches.Put(b.ID, b)

	logger.Log.Info("batch started",
		"batch_id", b.ID,
		"owner", userID,
		"target", target,
		"candidates", len(variants))

	return b.Snapshot(), nil
}

// BatchStatus renders a point-in-time snapshot for the batch owner.
func (p *Provision) BatchStatus(userID, batchID string) (*domain.BatchStatus, error) {
	b, err := p.ownedBatch(userID, batchID)
	if err != nil {
		return nil, err
	}
	return b.Snapshot(), nil
}

// VerifyBatch submits a code for one pending email of a batch. Success
// persists the credential and may complete the whole batch; rejection
// records the failure and tops the batch up from the candidate queue.
func (p *Provision) VerifyBatch(ctx context.Context, userID, batchID, email, code string) (*domain.BatchStatus, error) {
	b, err := p.ownedBatch(userID, batchID)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	ps, ok := b.Session(email)
	if !ok {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("Email %s is not part of this batch or has already been processed", email),
			StatusCode: http.StatusNotFound,
		}
	}

	if err := p.wf.Finalize(ctx, &ps.Candidate, code); err != nil {
		b.Fail(email, reasonOf(err))
		// a slot freed up, keep pursuing the target
		p.runQueue(ctx, b)
		// the rejection may have been the batch's last open item
		if b.Done() {
			p.batches.Delete(b.ID)
			logger.Log.Info("batch finished, last candidate rejected", "batch_id", b.ID, "owner", userID)
		}
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("Verification failed for %s: %s", email, reasonOf(err)),
			StatusCode: http.StatusUnprocessableEntity,
		}
	}

	cred := domain.Credential{Email: ps.Email, Username: ps.Username, Password: ps.Password}
	if err := p.creds.Append(cred); err != nil {
		logger.Log.Error("failed to persist credential", "email", cred.Email, "error", err)
		return nil, err
	}
	b.Complete(email)

	if b.Done() {
		p.batches.Delete(b.ID)
		logger.Log.Info("batch complete", "batch_id", b.ID, "owner", userID)
	}
	return b.Snapshot(), nil
}

// runQueue is the scheduler step loop: pull queued candidates one at a time
// until the pending+completed total reaches the target or the queue is
// exhausted. An explicit loop, so large candidate pools cannot grow the call
// stack, and serialized per batch so attempts never interleave.
func (p *Provision) runQueue(ctx context.Context, b *domain.Batch) {
	b.LockRun()
	defer b.UnlockRun()

	for {
		email, ok := b.NextCandidate()
		if !ok {
			return
		}

		cand, err := p.wf.Attempt(ctx, email)
		if err != nil {
			b.RecordFailure(email, reasonOf(err))
			logger.Log.Info("batch candidate failed",
				"batch_id", b.ID,
				"email", email,
				"reason", reasonOf(err))
			continue
		}
		b.AddPending(&domain.PendingSession{Candidate: *cand, CreatedAt: p.batches.Now()})
	}
}

func (p *Provision) ownedBatch(userID, batchID string) (*domain.Batch, error) {
	b, ok := p.batches.Get(batchID)
	if !ok {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    "This batch has expired or does not exist. Start a new batch",
			StatusCode: http.StatusNotFound,
		}
	}
	if b.OwnerID != userID {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    "You do not own this batch",
			StatusCode: http.StatusForbidden,
		}
	}
	return b, nil
}
