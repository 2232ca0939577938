package exchangegrapherrors

import "errors"

var ErrNoPairs = errors.New("no pairs to search")
var ErrInvalidMaxHops = errors.New("max hops must be greater than zero")
var ErrInvalidMaxNumResults = errors.New("max number of results must be greater than zero")
var ErrChainIDUnknown = errors.New("cannot infer chain id from two native currencies")
var ErrPairChainMismatch = errors.New("pair belongs to another chain")
var ErrTokenNotFoundInGraph = errors.New("token not found in graph")
var ErrExchangableNotFound = errors.New("exchangable not found in graph")
