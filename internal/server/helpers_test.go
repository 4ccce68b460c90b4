package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hookScope/internal/model"
	"hookScope/internal/normalize"
	"hookScope/internal/pipeline"
	"hookScope/internal/ratelimit"
)

const (
	sender = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"
	pool   = "SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.amm-swap-pool-v1-1"
	alex   = "SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.token-alex::alex"
)

var now = time.Unix(1_700_000_600, 0)

type testEnv struct {
	server   *Server
	pipeline *pipeline.Pipeline
	limiter  *ratelimit.Limiter
}

func newTestEnv(t *testing.T, secret string) *testEnv {
	t.Helper()
	clock := func() time.Time { return now }

	tokens := normalize.NewTokenRegistry()
	tokens.SetPrice("STX", decimal.NewFromInt(2))
	cfg := pipeline.Config{
		Normalize: normalize.Config{Thresholds: normalize.DefaultThresholds(), Tokens: tokens},
		Now:       clock,
	}
	cfg.Analytics.Now = clock
	p := pipeline.New(cfg, nil)
	limiter := ratelimit.New(ratelimit.Config{Now: clock}, nil)

	return &testEnv{
		server:   New(Config{WebhookSecret: secret}, p, limiter, nil),
		pipeline: p,
		limiter:  limiter,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func receipt(t *testing.T, typ string, data any, idx int) model.ReceiptEvent {
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return model.ReceiptEvent{Type: typ, Position: &model.EventPosition{Index: idx}, Data: raw}
}

func payload(txs ...model.Transaction) model.Payload {
	return model.Payload{Apply: []model.Block{{
		BlockIdentifier: model.BlockIdentifier{Index: 150001, Hash: fmt.Sprintf("0x%064x", 77)},
		Timestamp:       now.Unix() - 60,
		Transactions:    txs,
	}}}
}

func tx(id int, contract, method string, events ...model.ReceiptEvent) model.Transaction {
	return model.Transaction{
		TransactionIdentifier: model.TransactionIdentifier{Hash: fmt.Sprintf("0x%064x", id)},
		Metadata: &model.TxMetadata{
			Success: true,
			Sender:  sender,
			Kind:    &model.TxKind{Type: "ContractCall", Data: &model.ContractCall{ContractIdentifier: contract, Method: method}},
			Receipt: &model.Receipt{Events: events},
		},
	}
}

func whaleSwap(t *testing.T, id int) model.Payload {
	return payload(tx(id, pool, "swap-x-for-y",
		receipt(t, model.ReceiptSTXTransfer, model.STXTransferData{Sender: sender, Recipient: pool, Amount: "100000000000"}, 0),
		receipt(t, model.ReceiptFTTransfer, model.FTTransferData{AssetIdentifier: alex, Sender: pool, Recipient: sender, Amount: "500000000000"}, 1),
	))
}

func stxTransfer(t *testing.T, id int, amount string) model.Transaction {
	return tx(id, "", "", receipt(t, model.ReceiptSTXTransfer, model.STXTransferData{Sender: sender, Recipient: "SPRECIPIENT", Amount: amount}, 0))
}

func addLiquidity(t *testing.T, id int) model.Payload {
	return payload(tx(id, pool, "add-liquidity",
		receipt(t, model.ReceiptSTXTransfer, model.STXTransferData{Sender: sender, Recipient: pool, Amount: "1000000"}, 0),
		receipt(t, model.ReceiptFTTransfer, model.FTTransferData{AssetIdentifier: alex, Sender: sender, Recipient: pool, Amount: "100000000"}, 1),
	))
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, rec.Code, rec.Body.String())
}
