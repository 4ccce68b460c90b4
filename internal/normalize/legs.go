package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"hookScope/internal/model"
)

type leg struct {
	index     int
	sender    string
	recipient string
	token     model.TokenAmount
}

// fungibleLegs collects STX and FT transfers from a receipt in receipt order.
func (n *Normalizer) fungibleLegs(receipt *model.Receipt) ([]leg, error) {
	legs := make([]leg, 0, len(receipt.Events))
	for i, event := range receipt.Events {
		switch event.Type {
		case model.ReceiptFTTransfer:
			var data model.FTTransferData
			if err := json.Unmarshal(event.Data, &data); err != nil {
				return nil, fmt.Errorf("decode ft transfer: %w", err)
			}
			token, err := n.tokenAmount(data.AssetIdentifier, data.Amount)
			if err != nil {
				return nil, err
			}
			legs = append(legs, leg{index: eventIndex(event, i), sender: data.Sender, recipient: data.Recipient, token: token})
		case model.ReceiptSTXTransfer:
			var data model.STXTransferData
			if err := json.Unmarshal(event.Data, &data); err != nil {
				return nil, fmt.Errorf("decode stx transfer: %w", err)
			}
			token, err := n.tokenAmount(stxContract, data.Amount)
			if err != nil {
				return nil, err
			}
			legs = append(legs, leg{index: eventIndex(event, i), sender: data.Sender, recipient: data.Recipient, token: token})
		}
	}
	return legs, nil
}

// tokenAmount converts a smallest-unit amount into whole units and prices it when possible.
func (n *Normalizer) tokenAmount(assetIdentifier, raw string) (model.TokenAmount, error) {
	rawValue, err := decimal.NewFromString(raw)
	if err != nil {
		return model.TokenAmount{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if rawValue.IsNegative() || !rawValue.Equal(rawValue.Truncate(0)) {
		return model.TokenAmount{}, fmt.Errorf("invalid amount %q", raw)
	}

	contract, meta := n.tokens.Lookup(assetIdentifier)
	amount := rawValue.Shift(-meta.Decimals)
	token := model.TokenAmount{
		Contract: contract,
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Raw:      rawValue.String(),
		Amount:   amount,
	}
	if price, ok := n.tokens.Price(contract, meta.Symbol); ok {
		usd, _ := amount.Mul(price).Float64()
		token.USD = &usd
	}
	return token, nil
}

func eventIndex(event model.ReceiptEvent, ordinal int) int {
	if event.Position != nil {
		return event.Position.Index
	}
	return ordinal
}

func contractCall(meta *model.TxMetadata) *model.ContractCall {
	if meta == nil || meta.Kind == nil {
		return nil
	}
	return meta.Kind.Data
}
