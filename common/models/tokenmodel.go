package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

const TOKENS_TABLE = "tokens"
const TOKEN_NAME = "name"
const TOKEN_SYMBOL = "symbol"
const TOKEN_ADDRESS = "address"
const TOKEN_CHAINID = "chain_id"
const TOKEN_LOGOURI = "logo_uri"
const TOKEN_DECIMALS = "decimals"

type TokenIdentificator struct {
	Address string
	ChainID uint
}

func (t TokenIdentificator) String() string {
	return fmt.Sprintf("%d.%s", t.ChainID, strings.ToLower(t.Address))
}

type Token struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	ChainID  uint   `json:"chain_id"`
	LogoURI  string `json:"logo_uri,omitempty"`
	Decimals int    `json:"decimals"`
}

func (t *Token) GetIdentificator() TokenIdentificator {
	return TokenIdentificator{
		Address: t.Address,
		ChainID: t.ChainID,
	}
}

func (t *Token) GetJSON() ([]byte, error) {
	return json.Marshal(t)
}

func (t *Token) FillFromJSON(data []byte) error {
	return json.Unmarshal(data, t)
}
