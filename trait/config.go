package trait

// Config bounds the search performed by the resolvers
type Config struct {
	// MaxDepth is the deepest obligation that is still resolved; deeper ones overflow
	MaxDepth int `yaml:"maxDepth" validate:"gte=0"`
	// MaxAutoderef is how many times method resolution may dereference the receiver
	MaxAutoderef int `yaml:"maxAutoderef" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		MaxDepth:     4,
		MaxAutoderef: 8,
	}
}
