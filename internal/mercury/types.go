package mercury

import (
	"bytes"
	"fmt"
	"strconv"
)

// Int64 tolerates the feed's habit of serializing numbers either as JSON
// numbers or as quoted strings, depending on the column width.
type Int64 int64

func (n *Int64) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("mercury: invalid integer %q: %w", data, err)
	}
	*n = Int64(v)
	return nil
}

// LedgerInfo is the ledger a transaction was included in.
type LedgerInfo struct {
	CloseTime Int64 `json:"closeTime"`
	Sequence  Int64 `json:"sequence"`
}

// TxInfo is the transaction envelope metadata attached to entries and events.
type TxInfo struct {
	Fee    Int64       `json:"fee"`
	Ledger *LedgerInfo `json:"ledgerByLedger"`
}

// CloseTime returns the unix close time of the containing ledger, zero when
// the feed did not attach one.
func (t *TxInfo) CloseTime() int64 {
	if t == nil || t.Ledger == nil {
		return 0
	}
	return int64(t.Ledger.CloseTime)
}

// EntryNode is one ledger entry update row.
type EntryNode struct {
	ID         string  `json:"id"`
	ContractID string  `json:"contractId"`
	KeyXdr     string  `json:"keyXdr"`
	ValueXdr   string  `json:"valueXdr"`
	TxInfo     *TxInfo `json:"txInfoByTx"`
}

type EntryEdge struct {
	Node EntryNode `json:"node"`
}

type EntryConnection struct {
	Edges []EntryEdge `json:"edges"`
}

// EntrySets is the response shape of the alias-batched entry queries: one
// connection per pairN alias.
type EntrySets map[string]EntryConnection

// EventNode is one contract event row. Data and the topics are base64
// encoded ScVal XDR.
type EventNode struct {
	ContractID string  `json:"contractId"`
	Data       string  `json:"data"`
	Topic1     string  `json:"topic1"`
	Topic2     string  `json:"topic2"`
	Topic3     string  `json:"topic3"`
	Topic4     string  `json:"topic4"`
	TxInfo     *TxInfo `json:"txInfoByTx"`
}

type EventEdge struct {
	Node EventNode `json:"node"`
}

type EventConnection struct {
	Edges []EventEdge `json:"edges"`
}
