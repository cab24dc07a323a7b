package usecases

import (
	"context"

	"kurologin/internal/domain/login"
	"kurologin/internal/shared/logger"
)

// SweepSessionsUseCase evicts expired login sessions. It is run
// periodically by the scheduler.
type SweepSessionsUseCase struct {
	sessions login.SessionStore
	logger   logger.Interface
}

func NewSweepSessionsUseCase(sessions login.SessionStore, logger logger.Interface) *SweepSessionsUseCase {
	return &SweepSessionsUseCase{
		sessions: sessions,
		logger:   logger,
	}
}

func (uc *SweepSessionsUseCase) Execute(ctx context.Context) (int, error) {
	return uc.sessions.DeleteExpired(ctx)
}
