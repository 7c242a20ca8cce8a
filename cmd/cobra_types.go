package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// contractMap is a cobra flag value overriding per-network contract
// addresses, given as NETWORK=CONTRACT pairs separated by commas.
type contractMap struct {
	value map[domain.Network]string
}

func newContractMap(defaults map[domain.Network]string, overrides string) *contractMap {
	value := make(map[domain.Network]string, len(defaults))
	for network, contract := range defaults {
		value[network] = contract
	}
	m := &contractMap{value: value}
	if overrides != "" {
		if err := m.Set(overrides); err != nil {
			panic(err)
		}
	}
	return m
}

func (m *contractMap) Set(overrides string) error {
	for _, pair := range SplitAndTrimEmpty(overrides, ",", " \t\r\n\b") {
		network, contract, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("expected NETWORK=CONTRACT, got %q", pair)
		}
		m.value[domain.Network(strings.ToUpper(network))] = contract
	}

	return nil
}

func (m *contractMap) String() string {
	out := make([]string, 0, len(m.value))
	for network, contract := range m.value {
		out = append(out, fmt.Sprintf("%s=%s", network, contract))
	}
	sort.Strings(out)
	return "[" + strings.Join(out, ",") + "]"
}

func (m contractMap) Type() string {
	return "networkContractMap"
}
