package identity

import "fmt"

// Network selects the base58 address prefix used when rendering participants.
type Network struct {
	Name    string
	Mainnet bool
}

// Predefined networks.
var (
	MainNet = Network{Name: "mainnet", Mainnet: true}
	TestNet = Network{Name: "testnet", Mainnet: false}
	RegTest = Network{Name: "regtest", Mainnet: false}
)

var predefined = map[string]*Network{
	"mainnet": &MainNet,
	"testnet": &TestNet,
	"regtest": &RegTest,
}

// GetNetwork returns a predefined network by name.
func GetNetwork(name string) (*Network, error) {
	if net, ok := predefined[name]; ok {
		return net, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}
