package usecases

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"

	"kurologin/internal/domain/login"
	"kurologin/internal/shared/errors"
	"kurologin/internal/shared/logger"
	"kurologin/internal/shared/validation"
)

type CompleteLoginCommand struct {
	SessionID string
	Code      string
}

type CompleteLoginResult struct {
	Token      string
	UserID     string
	RoleID     string
	RoleName   string
	ServerID   string
	DeviceCode string
	DistinctID string
}

// CompleteLoginUseCase finishes a login attempt: it verifies the
// submitted code against the gateway, resolves the account's role, and
// consumes the session. The session is deleted only after verification
// succeeds, so a wrong code leaves it available for another try, and
// the delete doubles as the winner election when two requests race on
// the same session.
type CompleteLoginUseCase struct {
	gateway  login.SMSGateway
	accounts login.AccountService
	sessions login.SessionStore
	logger   logger.Interface
}

func NewCompleteLoginUseCase(
	gateway login.SMSGateway,
	accounts login.AccountService,
	sessions login.SessionStore,
	logger logger.Interface,
) *CompleteLoginUseCase {
	return &CompleteLoginUseCase{
		gateway:  gateway,
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

func (uc *CompleteLoginUseCase) Execute(ctx context.Context, cmd CompleteLoginCommand) (*CompleteLoginResult, error) {
	if err := uc.validateCommand(cmd); err != nil {
		return nil, err
	}

	session, err := uc.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		if stderrors.Is(err, login.ErrSessionNotFound) {
			return nil, errors.NewSessionExpiredError("session expired, please request a new code")
		}
		uc.logger.Errorw("failed to load login session", "error", err, "session_id", cmd.SessionID)
		return nil, errors.NewInternalError("failed to load login attempt")
	}

	creds, err := uc.gateway.VerifyCode(ctx, session.Receipt, cmd.Code)
	if err != nil {
		if stderrors.Is(err, login.ErrCodeRejected) {
			uc.logger.Infow("sms code rejected", "session_id", cmd.SessionID)
			return nil, errors.NewVerificationFailedError("verification code incorrect")
		}
		uc.logger.Errorw("failed to verify sms code", "error", err, "session_id", cmd.SessionID)
		return nil, errors.NewUpstreamFailureError("login service unavailable")
	}

	role, err := uc.accounts.RoleInfo(ctx, creds.Token)
	if err != nil {
		uc.logger.Errorw("failed to fetch role info", "error", err, "session_id", cmd.SessionID)
		return nil, errors.NewUpstreamFailureError("failed to fetch account details")
	}

	// Consuming the session elects the winner: when two requests race,
	// only the one whose delete succeeds may return credentials.
	if err := uc.sessions.Delete(ctx, cmd.SessionID); err != nil {
		if stderrors.Is(err, login.ErrSessionNotFound) {
			return nil, errors.NewSessionExpiredError("session already consumed")
		}
		uc.logger.Errorw("failed to consume login session", "error", err, "session_id", cmd.SessionID)
		return nil, errors.NewInternalError("failed to finalize login")
	}

	uc.logger.Infow("login completed",
		"session_id", cmd.SessionID,
		"user_id", creds.UserID,
		"role_id", role.RoleID,
	)

	return &CompleteLoginResult{
		Token:      creds.Token,
		UserID:     creds.UserID,
		RoleID:     role.RoleID,
		RoleName:   role.RoleName,
		ServerID:   role.ServerID,
		DeviceCode: uuid.NewString(),
		DistinctID: uuid.NewString(),
	}, nil
}

func (uc *CompleteLoginUseCase) validateCommand(cmd CompleteLoginCommand) error {
	if cmd.SessionID == "" {
		return errors.NewValidationError("session ID is required")
	}

	if !validation.IsValidSMSCode(cmd.Code) {
		return errors.NewValidationError("invalid verification code format")
	}

	return nil
}
