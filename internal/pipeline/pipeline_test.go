package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookScope/internal/alerts"
	"hookScope/internal/analytics"
	"hookScope/internal/broadcast"
	"hookScope/internal/model"
	"hookScope/internal/normalize"
)

const (
	sender = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"
	pool   = "SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.amm-swap-pool-v1-1"
	alex   = "SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.token-alex::alex"
)

var now = time.Unix(1_700_000_600, 0)

type recorder struct {
	mu   sync.Mutex
	msgs []broadcast.Message
}

func (r *recorder) ID() string { return "recorder" }

func (r *recorder) Send(msg broadcast.Message) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	return nil
}

func (r *recorder) Close() error { return nil }

type archive struct {
	events []model.Event
}

func (a *archive) PutEvents(_ context.Context, events []model.Event) error {
	a.events = append(a.events, events...)
	return nil
}

func receipt(t *testing.T, typ string, data interface{}, idx int) model.ReceiptEvent {
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

func newTestPipeline(sink *archive) *Pipeline {
	tokens := normalize.NewTokenRegistry()
	tokens.SetPrice("STX", decimal.NewFromInt(2))
	cfg := Config{
		Normalize: normalize.Config{Thresholds: normalize.DefaultThresholds(), Tokens: tokens},
		Now:       func() time.Time { return now },
	}
	cfg.Analytics.Now = cfg.Now
	if sink != nil {
		cfg.Archive = sink
	}
	return New(cfg, nil)
}

func TestWhaleSwapEndToEnd(t *testing.T) {
	sink := &archive{}
	p := newTestPipeline(sink)
	client := &recorder{}
	p.Hub.Register(client)

	var delivered []model.WhaleAlert
	var mu sync.Mutex
	p.Dispatcher = alerts.NewDispatcher(alerts.DispatcherConfig{Senders: map[alerts.Channel]alerts.Sender{
		alerts.ChannelWebhook: alerts.SenderFunc(func(_ context.Context, _ alerts.Subscription, a model.WhaleAlert) error {
			mu.Lock()
			delivered = append(delivered, a)
			mu.Unlock()
			return nil
		}),
	}}, nil)
	_, err := p.Dispatcher.CreateSubscription("alice", alerts.ChannelWebhook, map[string]string{"url": "http://x"}, alerts.Filters{})
	require.NoError(t, err)

	before := p.Analytics.Stats().TotalVolume24h

	events, errs := p.Ingest(context.Background(), normalize.BatchSwap, payload(tx(1, pool, "swap-x-for-y",
		receipt(t, model.ReceiptSTXTransfer, model.STXTransferData{Sender: sender, Recipient: pool, Amount: "100000000000"}, 0),
		receipt(t, model.ReceiptFTTransfer, model.FTTransferData{AssetIdentifier: alex, Sender: pool, Recipient: sender, Amount: "500000000000"}, 1),
	)))
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.True(t, events[0].Meta().IsWhale)

	swaps, total := p.Analytics.History(model.KindSwap, analytics.Filter{}, analytics.Page{})
	assert.Equal(t, 1, total)
	assert.Len(t, swaps, 1)
	assert.Equal(t, before+200_000, p.Analytics.Stats().TotalVolume24h)

	recent := p.Feed.Recent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, model.AlertLargeSwap, recent[0].Type)
	assert.Equal(t, model.SeverityWarning, recent[0].Severity)

	client.mu.Lock()
	channels := make([]string, 0, len(client.msgs))
	for _, msg := range client.msgs {
		assert.Equal(t, "event", msg.Type)
		channels = append(channels, msg.Channel)
	}
	client.mu.Unlock()
	assert.Equal(t, []string{broadcast.ChannelSwap, broadcast.ChannelWhaleAlert}, channels)

	p.Dispatcher.Wait()
	mu.Lock()
	assert.Len(t, delivered, 1)
	mu.Unlock()

	assert.Len(t, sink.events, 1)
}

func TestNonWhaleSkipsAlert(t *testing.T) {
	p := newTestPipeline(nil)
	client := &recorder{}
	p.Hub.Register(client)

	events, _ := p.Ingest(context.Background(), normalize.BatchSTXTransfer, payload(tx(2, "", "",
		receipt(t, model.ReceiptSTXTransfer, model.STXTransferData{Sender: sender, Recipient: "SPX", Amount: "1000000"}, 0),
	)))
	require.Len(t, events, 1)
	assert.Zero(t, p.Feed.Len())
	require.Len(t, client.msgs, 1)
	assert.Equal(t, broadcast.ChannelTransfer, client.msgs[0].Channel)
}

func TestNewWalletActivity(t *testing.T) {
	p := newTestPipeline(nil)

	p.Ingest(context.Background(), normalize.BatchSTXTransfer, payload(tx(3, "", "",
		receipt(t, model.ReceiptSTXTransfer, model.STXTransferData{Sender: "SPFRESH", Recipient: "SPX", Amount: "200000000000"}, 0),
	)))
	p.Ingest(context.Background(), normalize.BatchSTXTransfer, payload(tx(4, "", "",
		receipt(t, model.ReceiptSTXTransfer, model.STXTransferData{Sender: "SPFRESH", Recipient: "SPX", Amount: "200000000000"}, 0),
	)))

	recent := p.Feed.Recent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, model.AlertLargeTransfer, recent[0].Type)
	assert.Equal(t, model.AlertNewWalletActivity, recent[1].Type)
}

func TestChannelFor(t *testing.T) {
	assert.Equal(t, broadcast.ChannelSwap, ChannelFor(model.KindSwap))
	assert.Equal(t, broadcast.ChannelLiquidity, ChannelFor(model.KindLiquidity))
	assert.Equal(t, broadcast.ChannelTransfer, ChannelFor(model.KindTransfer))
}
