package model

import "encoding/json"

// Receipt event types emitted by chainhook.
const (
	ReceiptFTTransfer  = "FTTransferEvent"
	ReceiptSTXTransfer = "STXTransferEvent"
	ReceiptNFTTransfer = "NFTTransferEvent"
	ReceiptFTMint      = "FTMintEvent"
	ReceiptFTBurn      = "FTBurnEvent"
)

// Payload is one chainhook webhook body.
type Payload struct {
	Apply     []Block   `json:"apply"`
	Rollback  []Block   `json:"rollback"`
	Chainhook *HookInfo `json:"chainhook,omitempty"`
}

// HookInfo identifies the predicate that fired.
type HookInfo struct {
	UUID string `json:"uuid"`
}

// Block is an applied block.
type Block struct {
	BlockIdentifier BlockIdentifier `json:"block_identifier"`
	Timestamp       int64           `json:"timestamp"`
	Transactions    []Transaction   `json:"transactions"`
}

// BlockIdentifier is height and hash.
type BlockIdentifier struct {
	Index uint64 `json:"index"`
	Hash  string `json:"hash"`
}

// Transaction is one transaction inside a block.
type Transaction struct {
	TransactionIdentifier TransactionIdentifier `json:"transaction_identifier"`
	Metadata              *TxMetadata           `json:"metadata"`
}

// TransactionIdentifier holds the tx hash.
type TransactionIdentifier struct {
	Hash string `json:"hash"`
}

// TxMetadata carries execution details. Receipt and Kind are optional in the wire format.
type TxMetadata struct {
	Success bool     `json:"success"`
	Sender  string   `json:"sender"`
	Fee     uint64   `json:"fee"`
	Kind    *TxKind  `json:"kind,omitempty"`
	Receipt *Receipt `json:"receipt,omitempty"`
}

// TxKind describes the transaction type.
type TxKind struct {
	Type string        `json:"type"`
	Data *ContractCall `json:"data,omitempty"`
}

// ContractCall is the data of a ContractCall kind.
type ContractCall struct {
	ContractIdentifier string   `json:"contract_identifier"`
	Method             string   `json:"method"`
	Args               []string `json:"args"`
}

// Receipt holds the events a transaction produced.
type Receipt struct {
	Events []ReceiptEvent `json:"events"`
}

// ReceiptEvent is a typed receipt entry; Data is decoded per Type.
type ReceiptEvent struct {
	Type     string          `json:"type"`
	Position *EventPosition  `json:"position,omitempty"`
	Data     json.RawMessage `json:"data"`
}

// EventPosition is the event's index inside the transaction.
type EventPosition struct {
	Index int `json:"index"`
}

// FTTransferData is the data of an FTTransferEvent.
type FTTransferData struct {
	AssetIdentifier string `json:"asset_identifier"`
	Sender          string `json:"sender"`
	Recipient       string `json:"recipient"`
	Amount          string `json:"amount"`
}

// STXTransferData is the data of an STXTransferEvent.
type STXTransferData struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// NFTTransferData is the data of an NFTTransferEvent.
type NFTTransferData struct {
	AssetIdentifier string `json:"asset_identifier"`
	Sender          string `json:"sender"`
	Recipient       string `json:"recipient"`
	RawValue        string `json:"raw_value"`
}
