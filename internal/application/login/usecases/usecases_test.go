package usecases

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kurologin/internal/domain/login"
	"kurologin/internal/infrastructure/cache"
	"kurologin/internal/shared/errors"
	"kurologin/internal/shared/logger"
)

const testPhone = "13800000000"

type fakeChallenge struct {
	secCode string
	err     error
	calls   int
}

func (f *fakeChallenge) SecCode(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.secCode, nil
}

type fakeGateway struct {
	mu          sync.Mutex
	sendErr     error
	sendMessage string
	verifyErr   error
	creds       *login.Credentials
	sendCalls   int
	verifyCalls int
}

func (f *fakeGateway) SendCode(ctx context.Context, phoneNumber, deviceID, secCode string) (*login.DispatchReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &login.DispatchReceipt{
		PhoneNumber: phoneNumber,
		DeviceID:    deviceID,
		SecCode:     secCode,
		Message:     f.sendMessage,
	}, nil
}

func (f *fakeGateway) VerifyCode(ctx context.Context, receipt *login.DispatchReceipt, code string) (*login.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	creds := *f.creds
	return &creds, nil
}

type fakeAccounts struct {
	mu    sync.Mutex
	role  *login.RoleInfo
	err   error
	calls int
}

func (f *fakeAccounts) RoleInfo(ctx context.Context, token string) (*login.RoleInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	role := *f.role
	return &role, nil
}

func newSendUseCase(challenge *fakeChallenge, gateway *fakeGateway, store login.SessionStore) *SendSMSCodeUseCase {
	return NewSendSMSCodeUseCase(challenge, gateway, store, logger.NewLogger())
}

func newCompleteUseCase(gateway *fakeGateway, accounts *fakeAccounts, store login.SessionStore) *CompleteLoginUseCase {
	return NewCompleteLoginUseCase(gateway, accounts, store, logger.NewLogger())
}

func mustCreateSession(t *testing.T, store login.SessionStore) string {
	t.Helper()
	id, err := store.Create(context.Background(), &login.Session{
		PhoneNumber: testPhone,
		DeviceID:    "device-1",
		SecCode:     "sec-code",
		Receipt: &login.DispatchReceipt{
			PhoneNumber: testPhone,
			DeviceID:    "device-1",
			SecCode:     "sec-code",
		},
	})
	require.NoError(t, err)
	return id
}

func TestSendSMSCodeCreatesSession(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	challenge := &fakeChallenge{secCode: "sec-code"}
	gateway := &fakeGateway{sendMessage: "sms sent"}

	result, err := newSendUseCase(challenge, gateway, store).Execute(context.Background(), SendSMSCodeCommand{
		PhoneNumber: testPhone,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, "sms sent", result.Message)

	session, err := store.Get(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, testPhone, session.PhoneNumber)
	assert.Equal(t, "sec-code", session.SecCode)
	assert.Len(t, session.DeviceID, 40)
	require.NotNil(t, session.Receipt)
	assert.Equal(t, session.DeviceID, session.Receipt.DeviceID)
}

func TestSendSMSCodeDefaultMessage(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	challenge := &fakeChallenge{secCode: "sec-code"}
	gateway := &fakeGateway{}

	result, err := newSendUseCase(challenge, gateway, store).Execute(context.Background(), SendSMSCodeCommand{
		PhoneNumber: testPhone,
	})
	require.NoError(t, err)
	assert.Equal(t, defaultDispatchMessage, result.Message)
}

func TestSendSMSCodeRejectsBadPhone(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	challenge := &fakeChallenge{secCode: "sec-code"}
	gateway := &fakeGateway{}

	for _, phone := range []string{"", "12345", "23800000000", "138000000001", "1380000000a"} {
		_, err := newSendUseCase(challenge, gateway, store).Execute(context.Background(), SendSMSCodeCommand{
			PhoneNumber: phone,
		})
		require.Error(t, err, "phone %q", phone)
		assert.True(t, errors.IsValidationError(err))
	}

	assert.Zero(t, challenge.calls, "challenge provider must not be called for rejected input")
	assert.Zero(t, gateway.sendCalls)
	assert.Zero(t, store.Len())
}

func TestSendSMSCodeChallengeFailureLeavesNoSession(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	challenge := &fakeChallenge{err: fmt.Errorf("provider down")}
	gateway := &fakeGateway{}

	_, err := newSendUseCase(challenge, gateway, store).Execute(context.Background(), SendSMSCodeCommand{
		PhoneNumber: testPhone,
	})
	require.Error(t, err)
	assert.True(t, errors.IsChallengeFailureError(err))
	assert.Zero(t, gateway.sendCalls)
	assert.Zero(t, store.Len())
}

func TestSendSMSCodeDispatchFailureLeavesNoSession(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	challenge := &fakeChallenge{secCode: "sec-code"}
	gateway := &fakeGateway{sendErr: fmt.Errorf("dispatch rejected")}

	_, err := newSendUseCase(challenge, gateway, store).Execute(context.Background(), SendSMSCodeCommand{
		PhoneNumber: testPhone,
	})
	require.Error(t, err)
	assert.True(t, errors.IsDispatchFailureError(err))
	assert.Zero(t, store.Len())
}

func TestCompleteLoginHappyPath(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	sessionID := mustCreateSession(t, store)

	gateway := &fakeGateway{creds: &login.Credentials{Token: "tok-abc", UserID: "10086"}}
	accounts := &fakeAccounts{role: &login.RoleInfo{RoleID: "42", RoleName: "Rover", ServerID: "76402"}}

	result, err := newCompleteUseCase(gateway, accounts, store).Execute(context.Background(), CompleteLoginCommand{
		SessionID: sessionID,
		Code:      "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", result.Token)
	assert.Equal(t, "10086", result.UserID)
	assert.Equal(t, "42", result.RoleID)
	assert.Equal(t, "Rover", result.RoleName)
	assert.Equal(t, "76402", result.ServerID)
	assert.NotEmpty(t, result.DeviceCode)
	assert.NotEmpty(t, result.DistinctID)
	assert.NotEqual(t, result.DeviceCode, result.DistinctID)

	// Session is consumed; a second attempt must not succeed.
	_, err = newCompleteUseCase(gateway, accounts, store).Execute(context.Background(), CompleteLoginCommand{
		SessionID: sessionID,
		Code:      "123456",
	})
	require.Error(t, err)
	assert.True(t, errors.IsSessionExpiredError(err))
}

func TestCompleteLoginValidatesInput(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	gateway := &fakeGateway{}
	accounts := &fakeAccounts{}
	uc := newCompleteUseCase(gateway, accounts, store)

	_, err := uc.Execute(context.Background(), CompleteLoginCommand{SessionID: "", Code: "123456"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	sessionID := mustCreateSession(t, store)
	for _, code := range []string{"", "12345", "1234567", "12345a"} {
		_, err := uc.Execute(context.Background(), CompleteLoginCommand{SessionID: sessionID, Code: code})
		require.Error(t, err, "code %q", code)
		assert.True(t, errors.IsValidationError(err))
	}

	assert.Zero(t, gateway.verifyCalls, "gateway must not be called for rejected input")
}

func TestCompleteLoginUnknownSession(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	gateway := &fakeGateway{}
	accounts := &fakeAccounts{}

	_, err := newCompleteUseCase(gateway, accounts, store).Execute(context.Background(), CompleteLoginCommand{
		SessionID: "nope",
		Code:      "123456",
	})
	require.Error(t, err)
	assert.True(t, errors.IsSessionExpiredError(err))
	assert.Zero(t, gateway.verifyCalls)
	assert.Zero(t, accounts.calls)
}

func TestCompleteLoginWrongCodeKeepsSession(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	sessionID := mustCreateSession(t, store)

	gateway := &fakeGateway{verifyErr: fmt.Errorf("%w: wrong code", login.ErrCodeRejected)}
	accounts := &fakeAccounts{}
	uc := newCompleteUseCase(gateway, accounts, store)

	_, err := uc.Execute(context.Background(), CompleteLoginCommand{SessionID: sessionID, Code: "000000"})
	require.Error(t, err)
	assert.True(t, errors.IsVerificationFailedError(err))
	assert.Zero(t, accounts.calls)

	// Same session retries with the right code.
	gateway.verifyErr = nil
	gateway.creds = &login.Credentials{Token: "tok-abc", UserID: "10086"}
	accounts.role = &login.RoleInfo{RoleID: "42", RoleName: "Rover", ServerID: "76402"}

	result, err := uc.Execute(context.Background(), CompleteLoginCommand{SessionID: sessionID, Code: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", result.Token)
}

func TestCompleteLoginUpstreamFaultKeepsSession(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	sessionID := mustCreateSession(t, store)

	gateway := &fakeGateway{verifyErr: fmt.Errorf("gateway timeout")}
	accounts := &fakeAccounts{}

	_, err := newCompleteUseCase(gateway, accounts, store).Execute(context.Background(), CompleteLoginCommand{
		SessionID: sessionID,
		Code:      "123456",
	})
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamFailureError(err))

	_, err = store.Get(context.Background(), sessionID)
	assert.NoError(t, err, "session must survive an upstream fault")
}

func TestCompleteLoginRoleFaultKeepsSession(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	sessionID := mustCreateSession(t, store)

	gateway := &fakeGateway{creds: &login.Credentials{Token: "tok-abc", UserID: "10086"}}
	accounts := &fakeAccounts{err: fmt.Errorf("role service down")}

	_, err := newCompleteUseCase(gateway, accounts, store).Execute(context.Background(), CompleteLoginCommand{
		SessionID: sessionID,
		Code:      "123456",
	})
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamFailureError(err))

	_, err = store.Get(context.Background(), sessionID)
	assert.NoError(t, err)
}

func TestCompleteLoginConcurrentSingleWinner(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	sessionID := mustCreateSession(t, store)

	gateway := &fakeGateway{creds: &login.Credentials{Token: "tok-abc", UserID: "10086"}}
	accounts := &fakeAccounts{role: &login.RoleInfo{RoleID: "42", RoleName: "Rover", ServerID: "76402"}}
	uc := newCompleteUseCase(gateway, accounts, store)

	const attempts = 8
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), CompleteLoginCommand{
				SessionID: sessionID,
				Code:      "123456",
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.True(t, errors.IsSessionExpiredError(err))
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent completion may succeed")
}

func TestSweepSessionsEvictsExpired(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	mustCreateSession(t, store)

	uc := NewSweepSessionsUseCase(store, logger.NewLogger())

	swept, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, swept, "fresh sessions must not be swept")
	assert.Equal(t, 1, store.Len())
}

func TestFullLoginFlow(t *testing.T) {
	store := cache.NewMemorySessionStore(0)
	challenge := &fakeChallenge{secCode: "sec-code"}
	gateway := &fakeGateway{
		sendMessage: "sms sent",
		creds:       &login.Credentials{Token: "tok-abc", UserID: "10086"},
	}
	accounts := &fakeAccounts{role: &login.RoleInfo{RoleID: "42", RoleName: "Rover", ServerID: "76402"}}

	sent, err := newSendUseCase(challenge, gateway, store).Execute(context.Background(), SendSMSCodeCommand{
		PhoneNumber: testPhone,
	})
	require.NoError(t, err)

	result, err := newCompleteUseCase(gateway, accounts, store).Execute(context.Background(), CompleteLoginCommand{
		SessionID: sent.SessionID,
		Code:      "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", result.Token)
	assert.Zero(t, store.Len(), "completed session must be consumed")
}
