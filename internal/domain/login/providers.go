package login

import "context"

// ChallengeProvider produces anti-bot security codes required by the
// SMS gateway.
type ChallengeProvider interface {
	SecCode(ctx context.Context) (string, error)
}

// SMSGateway dispatches one-time codes and exchanges them for
// credentials. VerifyCode wraps ErrCodeRejected when the gateway turns
// the code down.
type SMSGateway interface {
	SendCode(ctx context.Context, phoneNumber, deviceID, secCode string) (*DispatchReceipt, error)
	VerifyCode(ctx context.Context, receipt *DispatchReceipt, code string) (*Credentials, error)
}

// AccountService resolves a bearer token to the account's role details.
type AccountService interface {
	RoleInfo(ctx context.Context, token string) (*RoleInfo, error)
}
