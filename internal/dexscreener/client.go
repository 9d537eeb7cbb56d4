package dexscreener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/hetulpatel/pairwatch/internal/logging"
	"github.com/hetulpatel/pairwatch/internal/pairs"
)

const (
	defaultBaseURL           = "https://api.dexscreener.com"
	defaultRequestsPerMinute = 60
	defaultMaxAttempts       = 3
)

// ErrCircuitOpen is returned while the provider is considered unhealthy.
var ErrCircuitOpen = gobreaker.ErrOpenState

// Client fetches newly listed pairs from DexScreener.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	maxAttempts int
	backoff     func(attempt int) time.Duration
}

// Config controls optional overrides for the client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	MaxAttempts       int
	// Backoff overrides the wait between retries; tests use it to avoid sleeping.
	Backoff func(attempt int) time.Duration
}

// NewClient builds a DexScreener client with sane defaults.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	backoff := cfg.Backoff
	if backoff == nil {
		backoff = backoffFor
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		breaker:     newBreaker("dexscreener"),
		maxAttempts: attempts,
		backoff:     backoff,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		logging.Infof("[%s] circuit %s -> %s", name, from, to)
	}
	return gobreaker.NewCircuitBreaker(st)
}

func (c *Client) Name() string {
	return "dexscreener"
}

// FetchNewPairs retrieves the latest listing for the chain. Transport, status and
// decoding failures fail the whole fetch; individual entries that cannot be
// decoded or have no pair address are skipped.
func (c *Client) FetchNewPairs(ctx context.Context, chain pairs.Chain) pairs.FetchResult {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.listNewPairs(ctx, chain)
	})
	if err != nil {
		return pairs.Failure(fmt.Errorf("dexscreener new pairs %s: %w", chain, err))
	}
	resp := out.(*listingResponse)

	snapshots := make([]pairs.Snapshot, 0, len(resp.Pairs))
	skipped := 0
	for i, raw := range resp.Pairs {
		snap, err := normalizePair(chain, raw)
		if err != nil {
			logging.Warnf("[dexscreener] skip pair #%d: %v", i, err)
			skipped++
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return pairs.Succeeded(snapshots, skipped)
}

func (c *Client) listNewPairs(ctx context.Context, chain pairs.Chain) (*listingResponse, error) {
	u := fmt.Sprintf("%s/latest/dex/pairs/%s/new", c.baseURL, url.PathEscape(string(chain)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var resp listingResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, req *http.Request, dst any) error {
	var attempt int
	for {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() == nil && c.shouldRetry(attempt, 0) {
				if err := c.sleep(ctx, attempt); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
				return fmt.Errorf("decode listing: %w", err)
			}
			return nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()

		if c.shouldRetry(attempt, resp.StatusCode) {
			if err := c.sleep(ctx, attempt); err != nil {
				return err
			}
			continue
		}
		return fmt.Errorf("dexscreener API %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
}

func (c *Client) shouldRetry(attempt int, status int) bool {
	if attempt >= c.maxAttempts {
		return false
	}
	if status == 0 {
		return true
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return true
	}
	return false
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.backoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func backoffFor(attempt int) time.Duration {
	backoff := time.Duration(1<<uint(attempt-1)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}

var errMissingAddress = errors.New("missing pairAddress")

func normalizePair(chain pairs.Chain, raw json.RawMessage) (pairs.Snapshot, error) {
	var p pairPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return pairs.Snapshot{}, fmt.Errorf("decode pair: %w", err)
	}
	if strings.TrimSpace(p.PairAddress) == "" {
		return pairs.Snapshot{}, errMissingAddress
	}

	snap := pairs.Snapshot{
		Chain:       chain,
		PairAddress: p.PairAddress,
		DexID:       p.DexID,
		URL:         p.URL,
	}
	if p.ChainID != "" {
		snap.Chain = pairs.Chain(p.ChainID)
	}
	if p.BaseToken != nil {
		snap.BaseSymbol = p.BaseToken.Symbol
		snap.BaseName = p.BaseToken.Name
	}
	if p.Liquidity != nil && p.Liquidity.USD != nil {
		snap.LiquidityUSD = *p.Liquidity.USD
	}
	if p.Txns != nil && p.Txns.M5 != nil {
		snap.BuysM5 = p.Txns.M5.Buys
		snap.SellsM5 = p.Txns.M5.Sells
	}
	if p.PairCreatedAt > 0 {
		snap.PairCreatedAt = time.UnixMilli(p.PairCreatedAt).UTC()
	}
	return snap, nil
}

type listingResponse struct {
	SchemaVersion string            `json:"schemaVersion"`
	Pairs         []json.RawMessage `json:"pairs"`
}

type pairPayload struct {
	ChainID       string        `json:"chainId"`
	DexID         string        `json:"dexId"`
	URL           string        `json:"url"`
	PairAddress   string        `json:"pairAddress"`
	BaseToken     *tokenPayload `json:"baseToken"`
	Liquidity     *liquidity    `json:"liquidity"`
	Txns          *txnWindows   `json:"txns"`
	PairCreatedAt int64         `json:"pairCreatedAt"`
}

type tokenPayload struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type liquidity struct {
	USD *float64 `json:"usd"`
}

type txnWindows struct {
	M5 *txnCount `json:"m5"`
}

type txnCount struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}
