package mercury

import (
	"fmt"
	"strings"
)

const lastContractEntryQuery = `
  query MyQuery($contractId: String!, $ledgerKey: String!) {
    entryUpdateByContractIdAndKey(
      contract: $contractId
      ledgerKey: $ledgerKey
      lastN: 1
    ) {
      edges {
        node {
          id
          keyXdr
          valueXdr
        }
      }
    }
  }
`

const contractEventsQuery = `
  query MyQuery($contractId: String!) {
    eventByContractId(searchedContractId: $contractId) {
      edges {
        node {
          contractId
          data
          topic1
          topic2
          topic3
          topic4
          txInfoByTx {
            ledgerByLedger {
              closeTime
              sequence
            }
            fee
          }
        }
      }
    }
  }
`

// buildPairAddressesQuery batches n single-entry lookups against one factory
// contract into one request, one pairN alias per indexed slot. Variables are
// $contractId plus $ledgerKey1..$ledgerKeyN.
func buildPairAddressesQuery(n int) string {
	var body strings.Builder
	vars := "$contractId: String!"
	for i := 0; i < n; i++ {
		vars += fmt.Sprintf(", $ledgerKey%d: String!", i+1)
		fmt.Fprintf(&body, `
      pair%d: entryUpdateByContractIdAndKey(
        contract: $contractId
        ledgerKey: $ledgerKey%d
        lastN: 1
      ) {
        edges {
          node {
            id
            keyXdr
            valueXdr
          }
        }
      }
`, i, i+1)
	}
	return fmt.Sprintf("query MyQuery(%s) { %s }", vars, body.String())
}

// buildPairEntriesQuery batches the full instance-storage history of n pair
// contracts into one request. Variables are $contractId1..$contractIdN; the
// instance ledger key is fixed.
func buildPairEntriesQuery(n int) string {
	var body strings.Builder
	var vars strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			vars.WriteString(", ")
		}
		fmt.Fprintf(&vars, "$contractId%d: String!", i+1)
		fmt.Fprintf(&body, `
      pair%d: entryUpdateByContractIdAndKey(
        contract: $contractId%d
        ledgerKey: "AAAAFA=="
      ) {
        edges {
          node {
            id
            contractId
            keyXdr
            valueXdr
            txInfoByTx {
              ledger
              ledgerByLedger {
                closeTime
              }
            }
          }
        }
      }
`, i, i+1)
	}
	return fmt.Sprintf("query MyQuery(%s) { %s }", vars.String(), body.String())
}
