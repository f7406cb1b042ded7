package fixedmap

import "github.com/snir-david/ESTL/pkg/fixedtree"

// options collects construction-time settings shared by Map and Sharded.
type options struct {
	strategy fixedtree.Strategy
}

func defaultOptions() options {
	return options{strategy: fixedtree.StrategyRedBlack}
}

// Option configures a map at construction.
type Option func(*options)

// WithStrategy selects the balancing strategy of the backing tree.
func WithStrategy(strategy fixedtree.Strategy) Option {
	return func(o *options) {
		o.strategy = strategy
	}
}
