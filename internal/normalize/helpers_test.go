package normalize

import (
	"encoding/json"
	"fmt"

	"hookScope/internal/model"
)

const (
	testSender = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"
	testPool   = "SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.amm-swap-pool-v1-1"
	tokenALEX  = "SP3K8BC0PPEVCV7NZ6QSRWPQ2JE9E5B6N3PA0KBR9.token-alex::alex"
	tokenUSDA  = "SP2C2YFP12AJZB4MABJBAJ55XECVS7E4PMMZ89YZR.usda-token::usda"
)

func txHash(i int) string {
	return fmt.Sprintf("0x%064x", i)
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func ftEvent(index int, asset, sender, recipient, amount string) model.ReceiptEvent {
	return model.ReceiptEvent{
		Type:     model.ReceiptFTTransfer,
		Position: &model.EventPosition{Index: index},
		Data: mustJSON(model.FTTransferData{
			AssetIdentifier: asset,
			Sender:          sender,
			Recipient:       recipient,
			Amount:          amount,
		}),
	}
}

func stxEvent(index int, sender, recipient, amount string) model.ReceiptEvent {
	return model.ReceiptEvent{
		Type:     model.ReceiptSTXTransfer,
		Position: &model.EventPosition{Index: index},
		Data:     mustJSON(model.STXTransferData{Sender: sender, Recipient: recipient, Amount: amount}),
	}
}

func nftEvent(index int, asset, sender, recipient string) model.ReceiptEvent {
	return model.ReceiptEvent{
		Type:     model.ReceiptNFTTransfer,
		Position: &model.EventPosition{Index: index},
		Data:     mustJSON(model.NFTTransferData{AssetIdentifier: asset, Sender: sender, Recipient: recipient, RawValue: "0x0100000000000000000000000000000001"}),
	}
}

func contractTx(hash, contract, method string, events ...model.ReceiptEvent) model.Transaction {
	return model.Transaction{
		TransactionIdentifier: model.TransactionIdentifier{Hash: hash},
		Metadata: &model.TxMetadata{
			Success: true,
			Sender:  testSender,
			Kind: &model.TxKind{
				Type: "ContractCall",
				Data: &model.ContractCall{ContractIdentifier: contract, Method: method},
			},
			Receipt: &model.Receipt{Events: events},
		},
	}
}

func batch(txs ...model.Transaction) model.Payload {
	return model.Payload{Apply: []model.Block{{
		BlockIdentifier: model.BlockIdentifier{Index: 150000, Hash: txHash(999)},
		Timestamp:       1700000000,
		Transactions:    txs,
	}}}
}
