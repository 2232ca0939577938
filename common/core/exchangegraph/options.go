package exchangegraph

import "github.com/alexkalak/go_v2_router/common/core/coreerrors/exchangegrapherrors"

const (
	DefaultMaxNumResults = 3
	DefaultMaxHops       = 3
)

type searchOptions struct {
	maxNumResults int
	maxHops       int
}

type Option func(*searchOptions)

// WithMaxNumResults bounds how many trades a search returns.
func WithMaxNumResults(n int) Option {
	return func(o *searchOptions) {
		o.maxNumResults = n
	}
}

// WithMaxHops bounds how many pairs a returned route may use.
func WithMaxHops(n int) Option {
	return func(o *searchOptions) {
		o.maxHops = n
	}
}

func newSearchOptions(opts []Option) (searchOptions, error) {
	o := searchOptions{
		maxNumResults: DefaultMaxNumResults,
		maxHops:       DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.maxHops <= 0 {
		return searchOptions{}, exchangegrapherrors.ErrInvalidMaxHops
	}
	if o.maxNumResults <= 0 {
		return searchOptions{}, exchangegrapherrors.ErrInvalidMaxNumResults
	}
	return o, nil
}
