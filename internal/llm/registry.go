package llm

import "fmt"

// defines a function that creates a new gateway instance
type GatewayFactory func() (Gateway, error)

// global registry of available providers
var providers = make(map[string]GatewayFactory)

// registers a gateway factory with the given name
func RegisterProvider(name string, factory GatewayFactory) {
	providers[name] = factory
}

// creates a new gateway instance based on the given provider name
func NewGateway(name string) (Gateway, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	return factory()
}
