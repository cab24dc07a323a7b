// Package usecases implements the login application flows.
package usecases

import (
	"context"

	"kurologin/internal/domain/login"
	"kurologin/internal/shared/errors"
	"kurologin/internal/shared/id"
	"kurologin/internal/shared/logger"
	"kurologin/internal/shared/validation"
)

const defaultDispatchMessage = "verification code sent"

type SendSMSCodeCommand struct {
	PhoneNumber string
}

type SendSMSCodeResult struct {
	SessionID string
	Message   string
}

// SendSMSCodeUseCase begins a login attempt: it obtains a security code,
// asks the gateway to text the phone, and records the pending session.
// Nothing is stored unless the dispatch succeeds.
type SendSMSCodeUseCase struct {
	challenge login.ChallengeProvider
	gateway   login.SMSGateway
	sessions  login.SessionStore
	logger    logger.Interface
}

func NewSendSMSCodeUseCase(
	challenge login.ChallengeProvider,
	gateway login.SMSGateway,
	sessions login.SessionStore,
	logger logger.Interface,
) *SendSMSCodeUseCase {
	return &SendSMSCodeUseCase{
		challenge: challenge,
		gateway:   gateway,
		sessions:  sessions,
		logger:    logger,
	}
}

func (uc *SendSMSCodeUseCase) Execute(ctx context.Context, cmd SendSMSCodeCommand) (*SendSMSCodeResult, error) {
	if !validation.IsValidPhoneNumber(cmd.PhoneNumber) {
		return nil, errors.NewValidationError("invalid phone number format")
	}

	secCode, err := uc.challenge.SecCode(ctx)
	if err != nil {
		uc.logger.Errorw("failed to obtain security code", "error", err)
		return nil, errors.NewChallengeFailureError("failed to pass security verification")
	}

	deviceID, err := id.NewDeviceID()
	if err != nil {
		uc.logger.Errorw("failed to generate device id", "error", err)
		return nil, errors.NewInternalError("failed to prepare login attempt")
	}

	receipt, err := uc.gateway.SendCode(ctx, cmd.PhoneNumber, deviceID, secCode)
	if err != nil {
		uc.logger.Errorw("failed to dispatch sms code", "error", err)
		return nil, errors.NewDispatchFailureError("failed to send verification code")
	}

	sessionID, err := uc.sessions.Create(ctx, &login.Session{
		PhoneNumber: cmd.PhoneNumber,
		DeviceID:    deviceID,
		SecCode:     secCode,
		Receipt:     receipt,
	})
	if err != nil {
		uc.logger.Errorw("failed to store login session", "error", err)
		return nil, errors.NewInternalError("failed to record login attempt")
	}

	uc.logger.Infow("sms code dispatched and session created",
		"session_id", sessionID,
	)

	message := receipt.Message
	if message == "" {
		message = defaultDispatchMessage
	}

	return &SendSMSCodeResult{
		SessionID: sessionID,
		Message:   message,
	}, nil
}
