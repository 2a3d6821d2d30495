package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestRESTLoadPools(t *testing.T) {
	body := `[
		{"pair":"kHYPE/WHYPE","tier":1.5,"dex":"hyperswap","apy_24h":12.3,"tvl":250000,"volume24h":90000,"fees24h":120},
		{"pair":"USDT/WHYPE","tier":"0.3","dex":"kittenswap","apy_24h":null,"tvl":50000,"fees24h":"oops"}
	]`
	srv, captured := newTestServer(t, http.StatusOK, body)

	s := NewRESTStore(srv.URL, "secret-key", "pools", "hyperevm", zap.NewNop())
	records, err := s.LoadPools(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "kHYPE/WHYPE", records[0].Pair)
	assert.Equal(t, "hyperswap", records[0].DEX)
	assert.Equal(t, 12.3, records[0].APY24h)

	// Quoted numbers parse; null, absent and garbage coerce to zero.
	assert.Equal(t, 0.3, records[1].Tier)
	assert.Equal(t, 0.0, records[1].APY24h)
	assert.Equal(t, 0.0, records[1].Volume24h)
	assert.Equal(t, 0.0, records[1].Fees24h)

	// Query contract: fixed projection, fixed network filter.
	q := captured.URL.Query()
	assert.Equal(t, "pair,tier,dex,apy_24h,tvl,volume24h,fees24h", q.Get("select"))
	assert.Equal(t, "eq.hyperevm", q.Get("blockchain"))
	assert.Equal(t, "/rest/v1/pools", captured.URL.Path)

	// Auth headers.
	assert.Equal(t, "secret-key", captured.Header.Get("apikey"))
	assert.Equal(t, "Bearer secret-key", captured.Header.Get("Authorization"))
}

func TestRESTLoadPoolsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[]`)

	s := NewRESTStore(srv.URL, "k", "pools", "hyperevm", zap.NewNop())
	records, err := s.LoadPools(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRESTLoadPoolsServerError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `{"message":"boom"}`)

	s := NewRESTStore(srv.URL, "k", "pools", "hyperevm", zap.NewNop())
	records, err := s.LoadPools(context.Background())

	require.Error(t, err)
	assert.Nil(t, records)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Contains(t, httpErr.Error(), "boom")
}

func TestRESTLoadPoolsConnectionRefused(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[]`)
	srv.Close() // force a transport failure

	s := NewRESTStore(srv.URL, "k", "pools", "hyperevm", zap.NewNop())
	_, err := s.LoadPools(context.Background())
	assert.Error(t, err)
}

func TestRESTLoadPoolsBadJSON(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"not":"an array"`)

	s := NewRESTStore(srv.URL, "k", "pools", "hyperevm", zap.NewNop())
	_, err := s.LoadPools(context.Background())
	assert.Error(t, err)
}

func TestLooseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`1.5`, 1.5},
		{`"2.75"`, 2.75},
		{`null`, 0},
		{`"n/a"`, 0},
		{`""`, 0},
		{`-3`, -3},
	}

	for _, tt := range tests {
		var f looseFloat
		require.NoError(t, f.UnmarshalJSON([]byte(tt.in)), tt.in)
		assert.Equal(t, tt.want, float64(f), tt.in)
	}
}
