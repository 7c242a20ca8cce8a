// Package api exposes the aggregation results over HTTP.
package api

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/soroswap/soroswap-analytics/internal/info"
	"github.com/soroswap/soroswap-analytics/internal/metrics"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

// Aggregator is the slice of the info service the HTTP layer serves.
type Aggregator interface {
	PoolsInfo(ctx context.Context, network domain.Network) ([]info.PoolInfo, error)
	PoolInfo(ctx context.Context, network domain.Network, poolAddress string) (info.PoolInfo, error)
	TokensInfo(ctx context.Context, network domain.Network) ([]info.TokenInfo, error)
	TokenInfo(ctx context.Context, network domain.Network, token string) (info.TokenInfo, error)
	PoolsOfToken(ctx context.Context, network domain.Network, token string) ([]info.PoolOfToken, error)
	ProtocolTVL(ctx context.Context, network domain.Network) (float64, error)
	ProtocolVolume(ctx context.Context, network domain.Network, days int) (float64, error)
	ProtocolFees(ctx context.Context, network domain.Network, days int) (float64, error)
	PoolShares(ctx context.Context, network domain.Network, poolAddress string) (*big.Int, error)

	PoolTVLChart(ctx context.Context, network domain.Network, poolAddress string) ([]info.ChartPoint, error)
	ProtocolTVLChart(ctx context.Context, network domain.Network) ([]info.ChartPoint, error)
	TokenTVLChart(ctx context.Context, network domain.Network, token string) ([]info.ChartPoint, error)
	TokenPriceChart(ctx context.Context, network domain.Network, token string) ([]info.ChartPoint, error)
	ProtocolVolumeChart(ctx context.Context, network domain.Network) ([]info.ChartPoint, error)
	TokenVolumeChart(ctx context.Context, network domain.Network, token string) ([]info.ChartPoint, error)
	PoolVolumeChart(ctx context.Context, network domain.Network, poolAddress string) ([]info.ChartPoint, error)
	ProtocolFeesChart(ctx context.Context, network domain.Network) ([]info.ChartPoint, error)
	PoolFeesChart(ctx context.Context, network domain.Network, poolAddress string) ([]info.ChartPoint, error)
}

var _ Aggregator = (*info.Service)(nil)

type Server struct {
	logger *slog.Logger
	agg    Aggregator
	m      *metrics.Metrics
	srv    *http.Server
}

func NewServer(addr string, agg Aggregator, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		logger: logger,
		agg:    agg,
		m:      m,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.countRequests)

	r.Get("/health", s.handleHealth)
	r.Mount("/metrics", metrics.Handler())

	r.Route("/info", func(r chi.Router) {
		r.Get("/pools", s.handlePoolsInfo)
		r.Get("/pool/{address}", s.handlePoolInfo)
		r.Get("/pool/{address}/shares", s.handlePoolShares)
		r.Get("/tokens", s.handleTokensInfo)
		r.Get("/token/{address}", s.handleTokenInfo)
		r.Get("/token/{address}/pools", s.handlePoolsOfToken)
		r.Get("/tvl", s.handleTVL)
		r.Get("/volume", s.handleVolume)
		r.Get("/fees", s.handleFees)

		r.Route("/charts", func(r chi.Router) {
			r.Get("/tvl", s.handleTVLChart)
			r.Get("/tvl/pool/{address}", s.handlePoolTVLChart)
			r.Get("/tvl/token/{address}", s.handleTokenTVLChart)
			r.Get("/price/{address}", s.handleTokenPriceChart)
			r.Get("/volume", s.handleVolumeChart)
			r.Get("/volume/pool/{address}", s.handlePoolVolumeChart)
			r.Get("/volume/token/{address}", s.handleTokenVolumeChart)
			r.Get("/fees", s.handleFeesChart)
			r.Get("/fees/pool/{address}", s.handlePoolFeesChart)
		})
	})

	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP API listening", "addr", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.m != nil {
			s.m.RequestsTotal.Inc()
		}
		next.ServeHTTP(w, r)
	})
}
