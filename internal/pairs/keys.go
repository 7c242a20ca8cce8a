package pairs

import (
	"fmt"

	"github.com/soroswap/soroswap-analytics/internal/scval"
)

// Well known ledger keys. The instance key selects a contract's whole
// instance storage; the Phoenix factory keeps its pair vector under the
// persistent u32 enum slot 2.
const (
	InstanceStorageKeyXdr = "AAAAFA=="
	PhoenixLpVecKeyXdr    = "AAAAAwAAAAI="
)

// PairIndexKey builds the ledger key of slot i of the factory's
// PairAddressesNIndexed persistent vector.
func PairIndexKey(i int) (string, error) {
	if i < 0 {
		return "", fmt.Errorf("pairs: negative pair index %d", i)
	}
	key, err := scval.EncodeBase64(scval.Vec{
		scval.Symbol("PairAddressesNIndexed"),
		scval.U32(i),
	})
	if err != nil {
		return "", fmt.Errorf("pairs: encoding pair index key %d: %w", i, err)
	}
	return key, nil
}
