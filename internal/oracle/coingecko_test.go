package oracle_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soroswap/soroswap-analytics/internal/oracle"
)

func TestCoingecko_XLMPriceUSD(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    float64
		wantErr bool
	}{
		{
			name:   "ok",
			status: http.StatusOK,
			body:   `{"stellar":{"usd":0.1234}}`,
			want:   0.1234,
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			body:    `{}`,
			wantErr: true,
		},
		{
			name:    "zero price",
			status:  http.StatusOK,
			body:    `{"stellar":{"usd":0}}`,
			wantErr: true,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `{`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := oracle.NewCoingeckoWithEndpoint(server.URL)
			got, err := c.XLMPriceUSD(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("XLMPriceUSD error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("XLMPriceUSD = %f, want %f", got, tt.want)
			}
		})
	}
}
