package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soroswap/soroswap-analytics/internal/info"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// fakeAggregator overrides only what a test exercises; untouched operations
// panic through the embedded nil interface.
type fakeAggregator struct {
	Aggregator
	poolInfo  func(network domain.Network, address string) (info.PoolInfo, error)
	poolsInfo func(network domain.Network) ([]info.PoolInfo, error)
	volume    func(network domain.Network, days int) (float64, error)
	tvl       func(network domain.Network) (float64, error)
	tvlChart  func(network domain.Network) ([]info.ChartPoint, error)
}

func (f *fakeAggregator) PoolInfo(ctx context.Context, network domain.Network, address string) (info.PoolInfo, error) {
	return f.poolInfo(network, address)
}

func (f *fakeAggregator) PoolsInfo(ctx context.Context, network domain.Network) ([]info.PoolInfo, error) {
	return f.poolsInfo(network)
}

func (f *fakeAggregator) ProtocolVolume(ctx context.Context, network domain.Network, days int) (float64, error) {
	return f.volume(network, days)
}

func (f *fakeAggregator) ProtocolTVL(ctx context.Context, network domain.Network) (float64, error) {
	return f.tvl(network)
}

func (f *fakeAggregator) ProtocolTVLChart(ctx context.Context, network domain.Network) ([]info.ChartPoint, error) {
	return f.tvlChart(network)
}

func newTestServer(agg Aggregator) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", agg, nil, logger)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(&fakeAggregator{})
	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_PoolInfo(t *testing.T) {
	agg := &fakeAggregator{
		poolInfo: func(network domain.Network, address string) (info.PoolInfo, error) {
			assert.Equal(t, domain.NetworkTestnet, network)
			if address != "CPOOL" {
				return info.PoolInfo{}, info.ErrPoolNotFound
			}
			return info.PoolInfo{Pool: address, TVL: 12}, nil
		},
	}
	s := newTestServer(agg)

	rec := get(t, s, "/info/pool/CPOOL?network=TESTNET")
	require.Equal(t, http.StatusOK, rec.Code)

	var got info.PoolInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "CPOOL", got.Pool)
	assert.Equal(t, 12.0, got.TVL)

	rec = get(t, s, "/info/pool/CMISSING?network=TESTNET")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_PoolsInfo_DefaultsToMainnet(t *testing.T) {
	agg := &fakeAggregator{
		poolsInfo: func(network domain.Network) ([]info.PoolInfo, error) {
			assert.Equal(t, domain.NetworkMainnet, network)
			return []info.PoolInfo{}, nil
		},
	}
	s := newTestServer(agg)

	rec := get(t, s, "/info/pools")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_UnknownNetwork(t *testing.T) {
	s := newTestServer(&fakeAggregator{})
	rec := get(t, s, "/info/pools?network=DEVNET")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Volume(t *testing.T) {
	agg := &fakeAggregator{
		volume: func(network domain.Network, days int) (float64, error) {
			assert.Equal(t, 7, days)
			return 2.4, nil
		},
	}
	s := newTestServer(agg)

	rec := get(t, s, "/info/volume?days=7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"volume":2.4}`, rec.Body.String())

	rec = get(t, s, "/info/volume?days=-3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, s, "/info/volume?days=soon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_TVLAndChart(t *testing.T) {
	agg := &fakeAggregator{
		tvl: func(network domain.Network) (float64, error) { return 12, nil },
		tvlChart: func(network domain.Network) ([]info.ChartPoint, error) {
			return []info.ChartPoint{{Date: "2024-04-01", Value: 6}}, nil
		},
	}
	s := newTestServer(agg)

	rec := get(t, s, "/info/tvl")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tvl":12}`, rec.Body.String())

	rec = get(t, s, "/info/charts/tvl")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"date":"2024-04-01","value":6}]`, rec.Body.String())
}
