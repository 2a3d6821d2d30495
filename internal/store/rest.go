package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orwee/liduido/internal/pool"
)

const restTimeout = 10 * time.Second

// RESTStore queries the pool table through the store's PostgREST endpoint.
type RESTStore struct {
	baseURL string
	apiKey  string
	table   string
	network string
	client  *http.Client
	logger  *zap.Logger
}

// NewRESTStore creates a REST transport against baseURL, authenticating
// every request with apiKey.
func NewRESTStore(baseURL, apiKey, table, network string, logger *zap.Logger) *RESTStore {
	return &RESTStore{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		table:   table,
		network: network,
		client: &http.Client{
			Timeout: restTimeout,
		},
		logger: logger.Named("rest-store"),
	}
}

// HTTPError is a non-2xx response from the store.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("store http %d", e.StatusCode)
	}
	return fmt.Sprintf("store http %d: %s", e.StatusCode, b)
}

// LoadPools fetches the fixed column projection filtered to the
// configured network.
func (s *RESTStore) LoadPools(ctx context.Context) ([]pool.Record, error) {
	q := url.Values{}
	q.Set("select", strings.ReplaceAll(selectColumns, " ", ""))
	q.Set("blockchain", "eq."+s.network)
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, s.table, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}

	var rows []restRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := make([]pool.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}

	s.logger.Debug("pools loaded",
		zap.String("network", s.network),
		zap.Int("rows", len(records)))

	return records, nil
}

// Close releases idle connections.
func (s *RESTStore) Close() {
	s.client.CloseIdleConnections()
}

// restRow mirrors one PostgREST response object. Numeric columns arrive as
// numbers, quoted numbers or null depending on how the row was written;
// looseFloat normalizes all of them.
type restRow struct {
	Pair      string     `json:"pair"`
	DEX       string     `json:"dex"`
	Tier      looseFloat `json:"tier"`
	APY24h    looseFloat `json:"apy_24h"`
	TVL       looseFloat `json:"tvl"`
	Volume24h looseFloat `json:"volume24h"`
	Fees24h   looseFloat `json:"fees24h"`
}

func (r restRow) toRecord() pool.Record {
	return pool.Record{
		Pair:      r.Pair,
		DEX:       r.DEX,
		Tier:      float64(r.Tier),
		APY24h:    float64(r.APY24h),
		TVL:       float64(r.TVL),
		Volume24h: float64(r.Volume24h),
		Fees24h:   float64(r.Fees24h),
	}
}

// looseFloat coerces any JSON value to a float64, mapping null, absent and
// unparseable values to zero.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	*f = looseFloat(v)
	return nil
}
