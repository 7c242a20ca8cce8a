package flags

import (
	"fmt"
	"log"
	"strings"

	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// Networks is a cobra flag value holding the set of Stellar networks the
// service operates on, given as a comma separated list.
type Networks struct {
	Value *[]domain.Network
}

func NewNetworks(networks string) *Networks {
	parsed, err := parse(networks)
	if err != nil {
		log.Fatal(err)
	}

	return &Networks{Value: &parsed}
}

func (n *Networks) Set(networks string) error {
	parsed, err := parse(networks)
	if err != nil {
		return err
	}
	*n.Value = parsed

	return nil
}

func (n *Networks) String() string {
	out := make([]string, len(*n.Value))
	for i, d := range *n.Value {
		out[i] = string(d)
	}
	return "[" + strings.Join(out, ",") + "]"
}

func (n Networks) Type() string {
	return "networkSlice"
}

func parse(networks string) ([]domain.Network, error) {
	clean := splitAndTrimEmpty(networks, ",", " \t\r\n\b")

	out := make([]domain.Network, len(clean))

	for i, name := range clean {
		switch domain.Network(strings.ToUpper(name)) {
		case domain.NetworkMainnet:
			out[i] = domain.NetworkMainnet
		case domain.NetworkTestnet:
			out[i] = domain.NetworkTestnet
		default:
			return nil, fmt.Errorf("unknown network %q", name)
		}
	}

	return out, nil
}

// splitAndTrimEmpty slices s into all subslices separated by sep with all
// leading and trailing Unicode code points contained in cutset removed,
// filtering out empty strings.
func splitAndTrimEmpty(s, sep, cutset string) []string {
	if s == "" {
		return []string{}
	}

	spl := strings.Split(s, sep)
	nonEmptyStrings := make([]string, 0, len(spl))

	for i := 0; i < len(spl); i++ {
		element := strings.Trim(spl[i], cutset)
		if element != "" {
			nonEmptyStrings = append(nonEmptyStrings, element)
		}
	}

	return nonEmptyStrings
}
