package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookScope/internal/broadcast"
	"hookScope/internal/model"
)

type eventList struct {
	Items  []map[string]any `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

func TestWhaleSwapWebhookEndToEnd(t *testing.T) {
	env := newTestEnv(t, "")
	srv := httptest.NewServer(env.server.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello broadcast.Message
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, "connected", hello.Type)
	require.Eventually(t, func() bool { return env.pipeline.Hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	before := env.pipeline.Analytics.Stats().TotalVolume24h

	body, err := json.Marshal(whaleSwap(t, 1))
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/webhooks/swaps", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out webhookResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.Processed)

	var channels []string
	for i := 0; i < 2; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg broadcast.Message
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "event", msg.Type)
		assert.NotZero(t, msg.Timestamp)
		channels = append(channels, msg.Channel)
	}
	assert.Equal(t, []string{broadcast.ChannelSwap, broadcast.ChannelWhaleAlert}, channels)

	dashboard := decode[model.DashboardStats](t, env.do(t, http.MethodGet, "/dashboard", nil, nil))
	assert.Equal(t, before+200_000, dashboard.TotalVolume24h)
	assert.Equal(t, 1, dashboard.Swaps24h)

	swaps := decode[eventList](t, env.do(t, http.MethodGet, "/swaps", nil, nil))
	assert.Equal(t, 1, swaps.Total)
	require.Len(t, swaps.Items, 1)
	assert.Equal(t, pool, swaps.Items[0]["exchange"])
	assert.Equal(t, "ALEX", swaps.Items[0]["exchangeName"])

	feed := decode[[]model.WhaleAlert](t, env.do(t, http.MethodGet, "/alerts?limit=5", nil, nil))
	require.Len(t, feed, 1)
	assert.Equal(t, model.AlertLargeSwap, feed[0].Type)
}

func TestWebhookSecret(t *testing.T) {
	env := newTestEnv(t, "hook-secret")
	body := payload(stxTransfer(t, 2, "1000000"))

	requireStatus(t, env.do(t, http.MethodPost, "/webhooks/stx-transfers", body, nil), http.StatusUnauthorized)
	requireStatus(t, env.do(t, http.MethodPost, "/webhooks/stx-transfers", body,
		map[string]string{"Authorization": "Bearer wrong"}), http.StatusUnauthorized)

	rec := env.do(t, http.MethodPost, "/webhooks/stx-transfers", body,
		map[string]string{"Authorization": "Bearer hook-secret"})
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, 1, decode[webhookResponse](t, rec).Processed)
}

func TestWebhookInvalidJSON(t *testing.T) {
	env := newTestEnv(t, "")
	rec := env.do(t, http.MethodPost, "/webhooks/swaps", "{not json", nil)
	requireStatus(t, rec, http.StatusInternalServerError)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "decode payload")
}

func TestWebhookSkipsMalformedTransactions(t *testing.T) {
	env := newTestEnv(t, "")
	broken := model.Transaction{TransactionIdentifier: model.TransactionIdentifier{Hash: "0xnothex"}}
	body := payload(broken, stxTransfer(t, 3, "1000000"), stxTransfer(t, 4, "2000000"))

	rec := env.do(t, http.MethodPost, "/webhooks/stx-transfers", body, nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, 2, decode[webhookResponse](t, rec).Processed)
}

func TestHistoryPaginationAndFilters(t *testing.T) {
	env := newTestEnv(t, "")
	body := payload(
		stxTransfer(t, 10, "1000000"),
		stxTransfer(t, 11, "2000000"),
		stxTransfer(t, 12, "200000000000"),
	)
	requireStatus(t, env.do(t, http.MethodPost, "/webhooks/stx-transfers", body, nil), http.StatusOK)

	page := decode[eventList](t, env.do(t, http.MethodGet, "/transfers?limit=2", nil, nil))
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)

	rest := decode[eventList](t, env.do(t, http.MethodGet, "/transfers?limit=2&offset=2", nil, nil))
	assert.Equal(t, 3, rest.Total)
	assert.Len(t, rest.Items, 1)

	whales := decode[eventList](t, env.do(t, http.MethodGet, "/transfers?whaleOnly=true", nil, nil))
	assert.Equal(t, 1, whales.Total)

	requireStatus(t, env.do(t, http.MethodGet, "/transfers?limit=abc", nil, nil), http.StatusBadRequest)
	requireStatus(t, env.do(t, http.MethodGet, "/liquidity?type=sideways", nil, nil), http.StatusBadRequest)
	requireStatus(t, env.do(t, http.MethodGet, "/swaps?minUsd=-1", nil, nil), http.StatusBadRequest)
}

func TestPoolsTokensAndVolume(t *testing.T) {
	env := newTestEnv(t, "")
	requireStatus(t, env.do(t, http.MethodPost, "/webhooks/liquidity", addLiquidity(t, 20), nil), http.StatusOK)
	requireStatus(t, env.do(t, http.MethodPost, "/webhooks/swaps", whaleSwap(t, 21), nil), http.StatusOK)

	pools := decode[[]model.PoolStats](t, env.do(t, http.MethodGet, "/pools?limit=5", nil, nil))
	require.Len(t, pools, 1)
	assert.Equal(t, pool, pools[0].Contract)

	tokens := decode[[]model.TokenStats](t, env.do(t, http.MethodGet, "/tokens", nil, nil))
	assert.Len(t, tokens, 2)

	buckets := decode[[]model.VolumeBucket](t, env.do(t, http.MethodGet, "/volume?hours=24", nil, nil))
	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets[0].Count)
	requireStatus(t, env.do(t, http.MethodGet, "/volume?hours=0", nil, nil), http.StatusBadRequest)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")
	rec := env.do(t, http.MethodGet, "/health", nil, nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, "ok", decode[healthResponse](t, rec).Status)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, "")
	requireStatus(t, env.do(t, http.MethodGet, "/webhooks/swaps", nil, nil), http.StatusMethodNotAllowed)
}
