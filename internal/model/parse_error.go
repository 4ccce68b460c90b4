package model

// ParseError records a transaction that could not be normalized.
type ParseError struct {
	Kind        string `json:"kind"`
	BlockHeight uint64 `json:"blockHeight"`
	BlockHash   string `json:"blockHash"`
	TxID        string `json:"txId"`
	Error       string `json:"error"`
}
