package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// EventKind names the domain event variants.
type EventKind string

const (
	KindSwap      EventKind = "swap"
	KindLiquidity EventKind = "liquidity"
	KindTransfer  EventKind = "transfer"
)

// Event is one normalized on-chain effect.
type Event interface {
	Kind() EventKind
	Meta() EventMeta
}

// EventMeta holds the fields shared by every event kind.
type EventMeta struct {
	TxID        string `json:"txId"`
	EventIndex  int    `json:"eventIndex"`
	BlockHeight uint64 `json:"blockHeight"`
	BlockHash   string `json:"blockHash"`
	Timestamp   int64  `json:"timestamp"`
	Sender      string `json:"sender"`
	IsWhale     bool   `json:"isWhale"`
}

// Meta returns the shared event fields.
func (m EventMeta) Meta() EventMeta { return m }

// Key identifies an event within a chain.
func (m EventMeta) Key() string {
	return m.TxID + ":" + strconv.Itoa(m.EventIndex)
}

// TokenAmount is a token leg with raw and converted amounts.
type TokenAmount struct {
	Contract string          `json:"contract"`
	Symbol   string          `json:"symbol"`
	Decimals int32           `json:"decimals"`
	Raw      string          `json:"raw"`
	Amount   decimal.Decimal `json:"amount"`
	USD      *float64        `json:"usdValue,omitempty"`
}

// USDValue returns the USD value or zero when unpriced.
func (t TokenAmount) USDValue() float64 {
	if t.USD == nil {
		return 0
	}
	return *t.USD
}

// SwapEvent is a token swap through an exchange contract.
type SwapEvent struct {
	EventMeta
	TokenIn      TokenAmount `json:"tokenIn"`
	TokenOut     TokenAmount `json:"tokenOut"`
	Exchange     string      `json:"exchange"`
	ExchangeName string      `json:"exchangeName"`
}

func (SwapEvent) Kind() EventKind { return KindSwap }

// LiquidityAction is add or remove.
type LiquidityAction string

const (
	LiquidityAdd    LiquidityAction = "add"
	LiquidityRemove LiquidityAction = "remove"
)

// PoolRef identifies a liquidity pool.
type PoolRef struct {
	Contract string `json:"contract"`
	Name     string `json:"name"`
	Token0   string `json:"token0"`
	Token1   string `json:"token1"`
}

// LiquidityEvent is an add or remove against a pool.
type LiquidityEvent struct {
	EventMeta
	Action   LiquidityAction `json:"action"`
	Pool     PoolRef         `json:"pool"`
	Token0   TokenAmount     `json:"token0Amount"`
	Token1   TokenAmount     `json:"token1Amount"`
	LP       *TokenAmount    `json:"lpAmount,omitempty"`
	TotalUSD *float64        `json:"totalUsdValue,omitempty"`
}

func (LiquidityEvent) Kind() EventKind { return KindLiquidity }

// TotalUSDValue returns the USD value or zero when unpriced.
func (e LiquidityEvent) TotalUSDValue() float64 {
	if e.TotalUSD == nil {
		return 0
	}
	return *e.TotalUSD
}

// TransferAsset is the asset class of a transfer.
type TransferAsset string

const (
	AssetSTX TransferAsset = "stx"
	AssetFT  TransferAsset = "ft"
	AssetNFT TransferAsset = "nft"
)

// TransferEvent moves one asset between two addresses.
type TransferEvent struct {
	EventMeta
	Asset     TransferAsset `json:"asset"`
	Token     TokenAmount   `json:"token"`
	Recipient string        `json:"recipient"`
	NFTValue  string        `json:"nftValue,omitempty"`
}

func (TransferEvent) Kind() EventKind { return KindTransfer }
