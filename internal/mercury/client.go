// Package mercury talks to the Mercury indexer: a GraphQL endpoint serving
// historical ledger entries and contract events, and a REST endpoint
// managing the subscriptions that make Mercury index a contract at all.
package mercury

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// Config is one network's Mercury endpoints.
type Config struct {
	GraphQLEndpoint string
	BackendEndpoint string
	AccessToken     string
}

type Client struct {
	gql     *graphql.Client
	http    *http.Client
	backend string
	token   string
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		gql:     graphql.NewClient(cfg.GraphQLEndpoint),
		http:    &http.Client{Timeout: 30 * time.Second},
		backend: cfg.BackendEndpoint,
		token:   cfg.AccessToken,
		logger:  logger,
	}
}

// Registry holds one client per network.
type Registry struct {
	clients map[domain.Network]*Client
}

func NewRegistry(configs map[domain.Network]Config, logger *slog.Logger) *Registry {
	clients := make(map[domain.Network]*Client, len(configs))
	for network, cfg := range configs {
		clients[network] = NewClient(cfg, logger.With("network", string(network)))
	}
	return &Registry{clients: clients}
}

func (r *Registry) For(network domain.Network) (*Client, error) {
	c, ok := r.clients[network]
	if !ok {
		return nil, fmt.Errorf("mercury: no client configured for network %s", network)
	}
	return c, nil
}

func (c *Client) run(ctx context.Context, req *graphql.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.gql.Run(ctx, req, out)
}

// LastContractEntry fetches the most recent value of one ledger entry.
func (c *Client) LastContractEntry(ctx context.Context, contractID, ledgerKey string) (EntryConnection, error) {
	req := graphql.NewRequest(lastContractEntryQuery)
	req.Var("contractId", contractID)
	req.Var("ledgerKey", ledgerKey)

	var resp struct {
		Entries EntryConnection `json:"entryUpdateByContractIdAndKey"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return EntryConnection{}, fmt.Errorf("mercury: last contract entry for %s: %w", contractID, err)
	}
	return resp.Entries, nil
}

// ContractEvents fetches all indexed events emitted by one contract.
func (c *Client) ContractEvents(ctx context.Context, contractID string) ([]EventNode, error) {
	req := graphql.NewRequest(contractEventsQuery)
	req.Var("contractId", contractID)

	var resp struct {
		Events EventConnection `json:"eventByContractId"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("mercury: events for %s: %w", contractID, err)
	}
	nodes := make([]EventNode, len(resp.Events.Edges))
	for i, edge := range resp.Events.Edges {
		nodes[i] = edge.Node
	}
	return nodes, nil
}

// PairAddresses fetches the latest value of every given factory slot key in
// one aliased request.
func (c *Client) PairAddresses(ctx context.Context, factoryID string, ledgerKeys []string) (EntrySets, error) {
	if len(ledgerKeys) == 0 {
		return EntrySets{}, nil
	}
	req := graphql.NewRequest(buildPairAddressesQuery(len(ledgerKeys)))
	req.Var("contractId", factoryID)
	for i, key := range ledgerKeys {
		req.Var(fmt.Sprintf("ledgerKey%d", i+1), key)
	}

	var resp EntrySets
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("mercury: pair addresses of %s: %w", factoryID, err)
	}
	return resp, nil
}

// PairEntries fetches the instance-storage history of every given pair
// contract in one aliased request.
func (c *Client) PairEntries(ctx context.Context, contractIDs []string) (EntrySets, error) {
	if len(contractIDs) == 0 {
		return EntrySets{}, nil
	}
	req := graphql.NewRequest(buildPairEntriesQuery(len(contractIDs)))
	for i, id := range contractIDs {
		req.Var(fmt.Sprintf("contractId%d", i+1), id)
	}

	var resp EntrySets
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("mercury: pair entries: %w", err)
	}
	return resp, nil
}

// LedgerEntrySubscription asks Mercury to start indexing one ledger entry.
// Hydrate backfills the entry's history instead of indexing forward only.
type LedgerEntrySubscription struct {
	ContractID string `json:"contract_id"`
	KeyXdr     string `json:"key_xdr"`
	Durability string `json:"durability"`
	Hydrate    bool   `json:"hydrate,omitempty"`
}

type subscribeResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// SubscribeToLedgerEntries registers a ledger entry subscription.
func (c *Client) SubscribeToLedgerEntries(ctx context.Context, sub LedgerEntrySubscription) error {
	if err := c.post(ctx, "/entry", sub); err != nil {
		return fmt.Errorf("mercury: subscribe to entry %s of %s: %w", sub.KeyXdr, sub.ContractID, err)
	}
	return nil
}

// SubscribeToContractEvents registers an event stream subscription.
func (c *Client) SubscribeToContractEvents(ctx context.Context, contractID string) error {
	body := struct {
		ContractID string `json:"contract_id"`
	}{ContractID: contractID}
	if err := c.post(ctx, "/event", body); err != nil {
		return fmt.Errorf("mercury: subscribe to events of %s: %w", contractID, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.backend+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}
	var parsed subscribeResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && !parsed.OK && parsed.Error != "" {
		return fmt.Errorf("rejected: %s", parsed.Error)
	}
	return nil
}
