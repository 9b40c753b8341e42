package setup

import (
	"github.com/accmint-dev/accmint/internal/config"
	"github.com/accmint-dev/accmint/internal/domain"
	"github.com/accmint-dev/accmint/internal/handler"
	"github.com/accmint-dev/accmint/internal/jwt"
	"github.com/accmint-dev/accmint/internal/logger"
	"github.com/accmint-dev/accmint/internal/middleware"
	"github.com/accmint-dev/accmint/internal/middleware/metrics"
	"github.com/accmint-dev/accmint/internal/service"
	"github.com/accmint-dev/accmint/internal/session"
	"github.com/accmint-dev/accmint/internal/storage/file"
	"github.com/accmint-dev/accmint/internal/upstream"
)

// Dependencies holds all initialized components of the application.
type Dependencies struct {
	Config         *config.Config
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Sessions       *session.Store[*domain.PendingSession]
	Batches        *session.Store[*domain.Batch]
	Service        *service.Provision
}

// SetupDependencies initializes everything the API binary needs.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	creds, err := file.New(cfg.Public.AccountsPath())
	if err != nil {
		return nil, err
	}

	clock := session.SystemClock()

	// expiry must not silently drop in-flight registrations: both stores
	// account for what they forfeit
	sessions := session.New(cfg.Public.SessionTTL, clock, func(userID string, s *domain.PendingSession) {
		logger.Log.Warn("pending session expired",
			"user", userID,
			"email", s.Email)
	})
	batches := session.New(cfg.Public.BatchTTL, clock, func(batchID string, b *domain.Batch) {
		abandoned := b.Abandon()
		logger.Log.Warn("batch expired, pending sessions abandoned",
			"batch_id", batchID,
			"owner", b.OwnerID,
			"abandoned", abandoned)
	})

	metrics.RegisterRegistrySizes(sessions.Len, batches.Len)

	client := upstream.New(cfg.Public.Upstream)
	wf := service.NewWorkflow(client, upstream.NewDigest(cfg.DigestKey()))
	svc := service.NewProvision(wf, creds, sessions, batches, &cfg.Public)

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	h := handler.New(svc, jwtService, cfg)

	return &Dependencies{
		Config:         cfg,
		Handler:        h,
		AuthMiddleware: middleware.NewAuth(jwtService),
		Sessions:       sessions,
		Batches:        batches,
		Service:        svc,
	}, nil
}
