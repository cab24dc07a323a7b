package handlers

import (
	"context"

	"kurologin/internal/application/login/usecases"
)

// Use case interfaces for LoginHandler

type sendSMSCodeUseCase interface {
	Execute(ctx context.Context, cmd usecases.SendSMSCodeCommand) (*usecases.SendSMSCodeResult, error)
}

type completeLoginUseCase interface {
	Execute(ctx context.Context, cmd usecases.CompleteLoginCommand) (*usecases.CompleteLoginResult, error)
}
