package subgraphs

type TokenResponse struct {
	ID       string `json:"id"`
	Decimals string `json:"decimals"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
}

// PairResponse reserves are decimal strings already scaled by token decimals.
type PairResponse struct {
	ID       string        `json:"id"`
	Reserve0 string        `json:"reserve0"`
	Reserve1 string        `json:"reserve1"`
	Token0   TokenResponse `json:"token0"`
	Token1   TokenResponse `json:"token1"`

	ExchangeName string `json:"-"`
}
