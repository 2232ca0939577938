package currencyerrors

import "errors"

var ErrChainIDMismatch = errors.New("tokens are on different chains")
var ErrSameAddress = errors.New("tokens have the same address")
var ErrInvalidDecimals = errors.New("invalid token decimals")
var ErrNegativeAmount = errors.New("amount cannot be negative")
var ErrAmountOverflow = errors.New("amount exceeds uint256")
var ErrCurrencyMismatch = errors.New("currencies do not match")
var ErrNoWrappedToken = errors.New("no wrapped native token for chain")
var ErrZeroPriceDenominator = errors.New("price base amount cannot be zero")
