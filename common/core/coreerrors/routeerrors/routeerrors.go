package routeerrors

import "errors"

var ErrNoPairs = errors.New("route requires at least one pair")
var ErrChainIDs = errors.New("route pairs are on different chains")
var ErrInvalidInput = errors.New("route input is not in the first pair")
var ErrInvalidOutput = errors.New("route output is not in the last pair")
var ErrBrokenPath = errors.New("route pairs are not connected")
