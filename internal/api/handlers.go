package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/soroswap/soroswap-analytics/internal/info"
	"github.com/soroswap/soroswap-analytics/pkg/domain"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed encoding response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, info.ErrPoolNotFound):
		status = http.StatusNotFound
	case errors.Is(err, info.ErrNoUSDCPool):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// network reads the ?network= parameter, defaulting to mainnet.
func network(r *http.Request) (domain.Network, error) {
	raw := r.URL.Query().Get("network")
	if raw == "" {
		return domain.NetworkMainnet, nil
	}
	switch domain.Network(raw) {
	case domain.NetworkMainnet:
		return domain.NetworkMainnet, nil
	case domain.NetworkTestnet:
		return domain.NetworkTestnet, nil
	}
	return "", errors.New("unknown network " + raw)
}

// days reads the ?days= window parameter, defaulting to 1.
func days(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("days must be a positive integer")
	}
	return n, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePoolsInfo(w http.ResponseWriter, r *http.Request) {
	net, err := network(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	infos, err := s.agg.PoolsInfo(r.Context(), net)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handlePoolInfo(w http.ResponseWriter, r *http.Request) {
	net, err := network(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	poolInfo, err := s.agg.PoolInfo(r.Context(), net, chi.URLParam(r, "address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, poolInfo)
}

func (s *Server) handlePoolShares(w http.ResponseWriter, r *http.Request) {
	net, err := network(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	address := chi.URLParam(r, "address")
	shares, err := s.agg.PoolShares(r.Context(), net, address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"pool": address, "shares": shares})
}

func (s *Server) handleTokensInfo(w http.ResponseWriter, r *http.Request) {
	net, err := network(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	infos, err := s.agg.TokensInfo(r.Context(), net)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	net, err := network(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tokenInfo, err := s.agg.TokenInfo(r.Context(), net, chi.URLParam(r, "address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenInfo)
}

func (s *Server) handlePoolsOfToken(w http.ResponseWriter, r *http.Request) {
	net, err := network(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	pools, err := s.agg.PoolsOfToken(r.Context(), net, chi.URLParam(r, "address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pools)
}

func (s *Server) handleTVL(w http.ResponseWriter, r *http.Request) {
	net, err := network(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tvl, err := s.agg.ProtocolTVL(r.Context(), net)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{"tvl": tvl})
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	net, err := network(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	window, err := days(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	volume, err := s.agg.ProtocolVolume(r.Context(), net, window)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{"volume": volume})
}

func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	net, err := network(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	window, err := days(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	fees, err := s.agg.ProtocolFees(r.Context(), net, window)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{"fees": fees})
}

// chartHandler adapts the parameterless chart operations.
func (s *Server) chartHandler(chart func(r *http.Request, net domain.Network) ([]info.ChartPoint, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		net, err := network(r)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		points, err := chart(r, net)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, points)
	}
}

func (s *Server) handleTVLChart(w http.ResponseWriter, r *http.Request) {
	s.chartHandler(func(r *http.Request, net domain.Network) ([]info.ChartPoint, error) {
		return s.agg.ProtocolTVLChart(r.Context(), net)
	})(w, r)
}

func (s *Server) handlePoolTVLChart(w http.ResponseWriter, r *http.Request) {
	s.chartHandler(func(r *http.Request, net domain.Network) ([]info.ChartPoint, error) {
		return s.agg.PoolTVLChart(r.Context(), net, chi.URLParam(r, "address"))
	})(w, r)
}

func (s *Server) handleTokenTVLChart(w http.ResponseWriter, r *http.Request) {
	s.chartHandler(func(r *http.Request, net domain.Network) ([]info.ChartPoint, error) {
		return s.agg.TokenTVLChart(r.Context(), net, chi.URLParam(r, "address"))
	})(w, r)
}

func (s *Server) handleTokenPriceChart(w http.ResponseWriter, r *http.Request) {
	s.chartHandler(func(r *http.Request, net domain.Network) ([]info.ChartPoint, error) {
		return s.agg.TokenPriceChart(r.Context(), net, chi.URLParam(r, "address"))
	})(w, r)
}

func (s *Server) handleVolumeChart(w http.ResponseWriter, r *http.Request) {
	s.chartHandler(func(r *http.Request, net domain.Network) ([]info.ChartPoint, error) {
		return s.agg.ProtocolVolumeChart(r.Context(), net)
	})(w, r)
}

func (s *Server) handlePoolVolumeChart(w http.ResponseWriter, r *http.Request) {
	s.chartHandler(func(r *http.Request, net domain.Network) ([]info.ChartPoint, error) {
		return s.agg.PoolVolumeChart(r.Context(), net, chi.URLParam(r, "address"))
	})(w, r)
}

func (s *Server) handleTokenVolumeChart(w http.ResponseWriter, r *http.Request) {
	s.chartHandler(func(r *http.Request, net domain.Network) ([]info.ChartPoint, error) {
		return s.agg.TokenVolumeChart(r.Context(), net, chi.URLParam(r, "address"))
	})(w, r)
}

func (s *Server) handleFeesChart(w http.ResponseWriter, r *http.Request) {
	s.chartHandler(func(r *http.Request, net domain.Network) ([]info.ChartPoint, error) {
		return s.agg.ProtocolFeesChart(r.Context(), net)
	})(w, r)
}

func (s *Server) handlePoolFeesChart(w http.ResponseWriter, r *http.Request) {
	s.chartHandler(func(r *http.Request, net domain.Network) ([]info.ChartPoint, error) {
		return s.agg.PoolFeesChart(r.Context(), net, chi.URLParam(r, "address"))
	})(w, r)
}
