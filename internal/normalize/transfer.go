package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"hookScope/internal/model"
)

// parseTransfers emits one TransferEvent per receipt event of the requested asset class.
func (n *Normalizer) parseTransfers(base model.EventMeta, receipt *model.Receipt, asset model.TransferAsset) ([]model.Event, error) {
	var events []model.Event
	for i, event := range receipt.Events {
		var (
			ev  model.TransferEvent
			err error
			ok  bool
		)
		switch {
		case asset == model.AssetSTX && event.Type == model.ReceiptSTXTransfer:
			ev, err = n.stxTransfer(base, event.Data)
			ok = true
		case asset == model.AssetFT && event.Type == model.ReceiptFTTransfer:
			ev, err = n.ftTransfer(base, event.Data)
			ok = true
		case asset == model.AssetNFT && event.Type == model.ReceiptNFTTransfer:
			ev, err = n.nftTransfer(base, event.Data)
			ok = true
		}
		if !ok {
			continue
		}
		if err != nil {
			return nil, err
		}

		ev.EventIndex = eventIndex(event, i)
		ev.IsWhale = n.classifier.Measure(ev).IsWhale()
		events = append(events, ev)
	}
	return events, nil
}

func (n *Normalizer) stxTransfer(base model.EventMeta, raw json.RawMessage) (model.TransferEvent, error) {
	var data model.STXTransferData
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.TransferEvent{}, fmt.Errorf("decode stx transfer: %w", err)
	}
	token, err := n.tokenAmount(stxContract, data.Amount)
	if err != nil {
		return model.TransferEvent{}, err
	}
	return newTransfer(base, model.AssetSTX, token, data.Sender, data.Recipient), nil
}

func (n *Normalizer) ftTransfer(base model.EventMeta, raw json.RawMessage) (model.TransferEvent, error) {
	var data model.FTTransferData
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.TransferEvent{}, fmt.Errorf("decode ft transfer: %w", err)
	}
	if data.AssetIdentifier == "" {
		return model.TransferEvent{}, fmt.Errorf("ft transfer missing asset identifier")
	}
	token, err := n.tokenAmount(data.AssetIdentifier, data.Amount)
	if err != nil {
		return model.TransferEvent{}, err
	}
	return newTransfer(base, model.AssetFT, token, data.Sender, data.Recipient), nil
}

func (n *Normalizer) nftTransfer(base model.EventMeta, raw json.RawMessage) (model.TransferEvent, error) {
	var data model.NFTTransferData
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.TransferEvent{}, fmt.Errorf("decode nft transfer: %w", err)
	}
	if data.AssetIdentifier == "" {
		return model.TransferEvent{}, fmt.Errorf("nft transfer missing asset identifier")
	}
	contract, tokenName := splitAssetIdentifier(data.AssetIdentifier)
	token := model.TokenAmount{
		Contract: contract,
		Symbol:   deriveSymbol(contract, tokenName),
		Raw:      "1",
		Amount:   decimal.NewFromInt(1),
	}
	ev := newTransfer(base, model.AssetNFT, token, data.Sender, data.Recipient)
	ev.NFTValue = data.RawValue
	return ev, nil
}

func newTransfer(base model.EventMeta, asset model.TransferAsset, token model.TokenAmount, sender, recipient string) model.TransferEvent {
	if sender != "" {
		base.Sender = sender
	}
	return model.TransferEvent{
		EventMeta: base,
		Asset:     asset,
		Token:     token,
		Recipient: recipient,
	}
}
