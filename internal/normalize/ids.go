package normalize

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// canonicalTxID validates a 32-byte 0x-prefixed hex id and returns it lower-cased.
func canonicalTxID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("missing transaction id")
	}
	data, err := hexutil.Decode(input)
	if err != nil {
		return "", fmt.Errorf("invalid transaction id %q: %w", input, err)
	}
	if len(data) != common.HashLength {
		return "", fmt.Errorf("invalid transaction id length: %d", len(data))
	}
	return common.BytesToHash(data).Hex(), nil
}

// canonicalBlockHash normalizes a block hash when it is well formed and keeps it as is otherwise.
func canonicalBlockHash(input string) string {
	data, err := hexutil.Decode(input)
	if err != nil || len(data) != common.HashLength {
		return input
	}
	return common.BytesToHash(data).Hex()
}
