package tradeerrors

import "errors"

var ErrInputCurrencyMismatch = errors.New("amount currency does not match trade input")
var ErrOutputCurrencyMismatch = errors.New("amount currency does not match trade output")
var ErrNegativeSlippageTolerance = errors.New("slippage tolerance cannot be negative")
var ErrUnknownTradeType = errors.New("unknown trade type")
