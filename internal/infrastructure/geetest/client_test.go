package geetest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kurologin/internal/shared/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{CaptchaID: "captcha-1", BaseURL: srv.URL}, logger.NewLogger())
}

func TestSecCodeSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/load":
			assert.Equal(t, "captcha-1", r.URL.Query().Get("captcha_id"))
			assert.NotEmpty(t, r.URL.Query().Get("challenge"))
			w.Write([]byte(`{"status":"success","data":{"lot_number":"lot-1","payload":"p","process_token":"pt"}}`))
		case "/verify":
			assert.Equal(t, "lot-1", r.URL.Query().Get("lot_number"))
			w.Write([]byte(`{"status":"success","data":{"result":"success","seccode":{"lot_number":"lot-1","pass_token":"pass","gen_time":"1700000000","captcha_output":"out"}}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	secCode, err := client.SecCode(context.Background())
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(secCode), &payload))
	assert.Equal(t, "captcha-1", payload["captcha_id"])
	assert.Equal(t, "lot-1", payload["lot_number"])
	assert.Equal(t, "pass", payload["pass_token"])
}

func TestSecCodeLoadRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail"}`))
	})

	_, err := client.SecCode(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to register challenge")
}

func TestSecCodeVerifyRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/load":
			w.Write([]byte(`{"status":"success","data":{"lot_number":"lot-1","payload":"p","process_token":"pt"}}`))
		case "/verify":
			w.Write([]byte(`{"status":"success","data":{"result":"fail"}}`))
		}
	})

	_, err := client.SecCode(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to verify challenge")
}

func TestSecCodeServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.SecCode(context.Background())
	require.Error(t, err)
}
