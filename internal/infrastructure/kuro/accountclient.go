package kuro

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"kurologin/internal/domain/login"
	"kurologin/internal/shared/logger"
)

const defaultRolePath = "/gamer/role/default"

// roleData is the account detail call's payload.
type roleData struct {
	RoleID   json.Number `json:"roleId"`
	RoleName string      `json:"roleName"`
	ServerID json.Number `json:"serverId"`
}

// AccountClient resolves bearer tokens to role and server identifiers via
// the Kuro API.
type AccountClient struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Interface
}

// NewAccountClient creates a Kuro account detail client.
func NewAccountClient(cfg Config, log logger.Interface) *AccountClient {
	return &AccountClient{
		httpClient: newHTTPClient(cfg.Timeout),
		baseURL:    baseURLOrDefault(cfg.BaseURL),
		logger:     log,
	}
}

// Ensure AccountClient implements login.AccountService
var _ login.AccountService = (*AccountClient)(nil)

// RoleInfo fetches the player's default role and server for the token.
func (c *AccountClient) RoleInfo(ctx context.Context, token string) (*login.RoleInfo, error) {
	env, err := postForm(ctx, c.httpClient, c.baseURL+defaultRolePath, "", token, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role info: %w", err)
	}

	if env.Code != successCode {
		return nil, fmt.Errorf("role info rejected: %s (code %d)", env.Msg, env.Code)
	}

	var data roleData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode role payload: %w", err)
	}
	if data.RoleID.String() == "" {
		return nil, fmt.Errorf("role payload missing role id")
	}

	c.logger.Debugw("fetched role info",
		"role_id", data.RoleID.String(),
		"server_id", data.ServerID.String(),
	)

	return &login.RoleInfo{
		RoleID:   data.RoleID.String(),
		RoleName: data.RoleName,
		ServerID: data.ServerID.String(),
	}, nil
}
