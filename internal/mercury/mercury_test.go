package mercury

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildPairAddressesQuery(t *testing.T) {
	query := buildPairAddressesQuery(3)

	for _, want := range []string{
		"$contractId: String!",
		"$ledgerKey1: String!",
		"$ledgerKey3: String!",
		"pair0:",
		"pair2:",
		"lastN: 1",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
	if strings.Contains(query, "pair3:") || strings.Contains(query, "$ledgerKey4") {
		t.Errorf("query has too many aliases:\n%s", query)
	}
}

func TestBuildPairEntriesQuery(t *testing.T) {
	query := buildPairEntriesQuery(2)

	for _, want := range []string{
		"$contractId1: String!",
		"$contractId2: String!",
		"pair0:",
		"pair1:",
		`ledgerKey: "AAAAFA=="`,
		"closeTime",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
	if strings.Contains(query, "lastN") {
		t.Errorf("entries query must not truncate history:\n%s", query)
	}
}

func TestInt64_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    int64
		wantErr bool
	}{
		{name: "number", json: `{"fee":1234}`, want: 1234},
		{name: "string", json: `{"fee":"5678"}`, want: 5678},
		{name: "null", json: `{"fee":null}`, want: 0},
		{name: "garbage", json: `{"fee":"12x"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				Fee Int64 `json:"fee"`
			}
			err := json.Unmarshal([]byte(tt.json), &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && int64(out.Fee) != tt.want {
				t.Errorf("Fee = %d, want %d", out.Fee, tt.want)
			}
		})
	}
}

func TestClient_SubscribeToLedgerEntries(t *testing.T) {
	var got LedgerEntrySubscription
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/entry" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	c := NewClient(Config{BackendEndpoint: server.URL, AccessToken: "token-123"}, discardLogger())
	err := c.SubscribeToLedgerEntries(context.Background(), LedgerEntrySubscription{
		ContractID: "CPAIR",
		KeyXdr:     "AAAAFA==",
		Durability: "persistent",
		Hydrate:    true,
	})
	if err != nil {
		t.Fatalf("SubscribeToLedgerEntries error: %v", err)
	}
	if got.ContractID != "CPAIR" || got.KeyXdr != "AAAAFA==" || got.Durability != "persistent" || !got.Hydrate {
		t.Errorf("unexpected payload: %+v", got)
	}
	if auth != "Bearer token-123" {
		t.Errorf("unexpected auth header %q", auth)
	}
}

func TestClient_SubscribeRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "quota exceeded"})
	}))
	defer server.Close()

	c := NewClient(Config{BackendEndpoint: server.URL}, discardLogger())
	err := c.SubscribeToContractEvents(context.Background(), "CPAIR")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected rejection error, got %v", err)
	}
}

func TestRegistry_For(t *testing.T) {
	reg := NewRegistry(map[domain.Network]Config{
		domain.NetworkMainnet: {GraphQLEndpoint: "http://localhost/graphql"},
	}, discardLogger())

	if _, err := reg.For(domain.NetworkMainnet); err != nil {
		t.Errorf("For(mainnet) error: %v", err)
	}
	if _, err := reg.For(domain.NetworkTestnet); err == nil {
		t.Errorf("For(testnet) expected error for unconfigured network")
	}
}
