package normalize

import (
	"fmt"
	"strings"

	"hookScope/internal/model"
)

var addLiquidityMarkers = []string{"add-liquidity", "deposit", "mint"}

func classifyAction(method string) model.LiquidityAction {
	method = strings.ToLower(method)
	for _, marker := range addLiquidityMarkers {
		if strings.Contains(method, marker) {
			return model.LiquidityAdd
		}
	}
	return model.LiquidityRemove
}

// parseLiquidity maps the first two transfer legs to the pool tokens and an optional third to the LP token.
func (n *Normalizer) parseLiquidity(base model.EventMeta, meta *model.TxMetadata) (model.LiquidityEvent, error) {
	call := contractCall(meta)
	if call == nil || call.ContractIdentifier == "" {
		return model.LiquidityEvent{}, fmt.Errorf("liquidity transaction is not a contract call")
	}

	legs, err := n.fungibleLegs(meta.Receipt)
	if err != nil {
		return model.LiquidityEvent{}, err
	}
	if len(legs) < 2 {
		return model.LiquidityEvent{}, fmt.Errorf("liquidity needs two token transfers, found %d", len(legs))
	}

	token0, token1 := legs[0].token, legs[1].token
	base.EventIndex = legs[0].index
	ev := model.LiquidityEvent{
		EventMeta: base,
		Action:    classifyAction(call.Method),
		Pool: model.PoolRef{
			Contract: call.ContractIdentifier,
			Name:     token0.Symbol + "-" + token1.Symbol,
			Token0:   token0.Contract,
			Token1:   token1.Contract,
		},
		Token0: token0,
		Token1: token1,
	}
	if len(legs) > 2 {
		lp := legs[2].token
		ev.LP = &lp
	}
	if token0.USD != nil || token1.USD != nil {
		total := token0.USDValue() + token1.USDValue()
		ev.TotalUSD = &total
	}

	ev.IsWhale = n.classifier.Measure(ev).IsWhale()
	return ev, nil
}
