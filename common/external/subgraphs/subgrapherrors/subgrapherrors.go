package subgrapherrors

import "errors"

var ErrChainIDNotFound = errors.New("chain id not found")
var ErrExchangeTypeNotFound = errors.New("exchange type not found")
var ErrInvalidPairResponse = errors.New("invalid pair in subgraph response")
