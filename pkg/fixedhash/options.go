package fixedhash

// options carries construction knobs. The key type parameter is needed so
// a custom hasher can be typed to the map it configures.
type options[K comparable] struct {
	probing Probing
	hasher  func(K) uint64
}

func defaultOptions[K comparable]() options[K] {
	return options[K]{probing: Chaining}
}

// Option customizes map construction.
type Option[K comparable] func(*options[K])

// WithProbing selects the collision policy. The default is Chaining.
func WithProbing[K comparable](p Probing) Option[K] {
	return func(o *options[K]) {
		o.probing = p
	}
}

// WithHasher replaces the default maphash-based hasher. Equal keys must
// hash equally; a deterministic hasher also makes table layout
// reproducible across runs.
func WithHasher[K comparable](hash func(K) uint64) Option[K] {
	return func(o *options[K]) {
		o.hasher = hash
	}
}
