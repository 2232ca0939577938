package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const UNISWAP_V2_PAIR_TABLE = "uniswap_v2_pairs"

const UNISWAP_V2_PAIR_ADDRESS = "address"
const UNISWAP_V2_PAIR_EXCHANGE_NAME = "exchange_name"
const UNISWAP_V2_PAIR_CHAINID = "chain_id"
const UNISWAP_V2_PAIR_TOKEN0_ADDRESS = "token0_address"
const UNISWAP_V2_PAIR_TOKEN1_ADDRESS = "token1_address"
const UNISWAP_V2_PAIR_AMOUNT0 = "amount0"
const UNISWAP_V2_PAIR_AMOUNT1 = "amount1"
const UNISWAP_V2_PAIR_BLOCK_NUMBER = "block_number"
const UNISWAP_V2_PAIR_IS_DUSTY = "is_dusty"

var ErrInvalidPairJSON = errors.New("invalid v2 pair json")

// UniswapV2Pair is a reserve snapshot as stored and transported. Amount0 and Amount1
// are raw reserves of Token0 and Token1.
type UniswapV2Pair struct {
	Address      string
	ExchangeName string
	ChainID      uint
	Token0       string
	Token1       string
	Amount0      *big.Int
	Amount1      *big.Int
	IsDusty      bool
	BlockNumber  uint64
}

type V2PairIdentificator struct {
	Address string
	ChainID uint
}

func (p *UniswapV2Pair) GetIdentificator() V2PairIdentificator {
	return V2PairIdentificator{
		Address: p.Address,
		ChainID: p.ChainID,
	}
}

func (p V2PairIdentificator) String() string {
	return fmt.Sprintf("%d.%s", p.ChainID, strings.ToLower(p.Address))
}

func (p *UniswapV2Pair) GetLiquidity() *big.Int {
	if p.Amount0 == nil || p.Amount1 == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Mul(p.Amount0, p.Amount1)
}

// reserves are decimal strings on the wire
type v2PairJSON struct {
	Address      string `json:"address"`
	ExchangeName string `json:"exchange_name"`
	ChainID      uint   `json:"chain_id"`
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	IsDusty      bool   `json:"is_dusty"`
	BlockNumber  uint64 `json:"block_number"`
}

func bigToString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func (p *UniswapV2Pair) GetJSON() ([]byte, error) {
	return json.Marshal(v2PairJSON{
		Address:      p.Address,
		ExchangeName: p.ExchangeName,
		ChainID:      p.ChainID,
		Token0:       p.Token0,
		Token1:       p.Token1,
		Amount0:      bigToString(p.Amount0),
		Amount1:      bigToString(p.Amount1),
		IsDusty:      p.IsDusty,
		BlockNumber:  p.BlockNumber,
	})
}

func (p *UniswapV2Pair) FillFromJSON(data []byte) error {
	var raw v2PairJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	amount0, ok := new(big.Int).SetString(raw.Amount0, 10)
	if !ok {
		return fmt.Errorf("%w: amount0 %q", ErrInvalidPairJSON, raw.Amount0)
	}
	amount1, ok := new(big.Int).SetString(raw.Amount1, 10)
	if !ok {
		return fmt.Errorf("%w: amount1 %q", ErrInvalidPairJSON, raw.Amount1)
	}

	p.Address = raw.Address
	p.ExchangeName = raw.ExchangeName
	p.ChainID = raw.ChainID
	p.Token0 = raw.Token0
	p.Token1 = raw.Token1
	p.Amount0 = amount0
	p.Amount1 = amount1
	p.IsDusty = raw.IsDusty
	p.BlockNumber = raw.BlockNumber

	return nil
}
