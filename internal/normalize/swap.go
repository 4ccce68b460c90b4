package normalize

import (
	"fmt"

	"hookScope/internal/model"
)

// parseSwap takes the first transfer leg as token in and the last as token out.
// Intermediate hops of multi-hop routes are not represented.
func (n *Normalizer) parseSwap(base model.EventMeta, meta *model.TxMetadata) (model.SwapEvent, error) {
	legs, err := n.fungibleLegs(meta.Receipt)
	if err != nil {
		return model.SwapEvent{}, err
	}
	if len(legs) < 2 {
		return model.SwapEvent{}, fmt.Errorf("swap needs two token transfers, found %d", len(legs))
	}

	var exchange string
	if call := contractCall(meta); call != nil {
		exchange = call.ContractIdentifier
	}

	base.EventIndex = legs[0].index
	ev := model.SwapEvent{
		EventMeta:    base,
		TokenIn:      legs[0].token,
		TokenOut:     legs[len(legs)-1].token,
		Exchange:     exchange,
		ExchangeName: n.exchanges.Name(exchange),
	}
	ev.IsWhale = n.classifier.Measure(ev).IsWhale()
	return ev, nil
}
