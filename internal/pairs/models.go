package pairs

import (
	"context"
	"time"
)

// Chain identifies the network whose new listings are watched.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainSolana   Chain = "solana"
	ChainBSC      Chain = "bsc"
	ChainPolygon  Chain = "polygon"
	ChainArbitrum Chain = "arbitrum"
	ChainBase     Chain = "base"
)

var knownChains = map[Chain]bool{
	ChainEthereum: true,
	ChainSolana:   true,
	ChainBSC:      true,
	ChainPolygon:  true,
	ChainArbitrum: true,
	ChainBase:     true,
}

// Known reports whether the chain is one of the commonly listed networks.
// Other identifiers are still passed through to the provider.
func (c Chain) Known() bool {
	return knownChains[c]
}

// Provider is implemented by listing sources (DexScreener, ...). A provider
// never returns partial data on failure: either the whole listing or an error.
type Provider interface {
	Name() string
	FetchNewPairs(ctx context.Context, chain Chain) FetchResult
}

// FetchResult is the outcome of a single listing fetch.
type FetchResult struct {
	Pairs []Snapshot
	// Skipped counts listing entries dropped because they could not be decoded
	// or carried no pair address.
	Skipped int
	Err     error
}

// Failed reports whether the fetch failed as a whole.
func (r FetchResult) Failed() bool {
	return r.Err != nil
}

// Succeeded builds a successful fetch result.
func Succeeded(pairs []Snapshot, skipped int) FetchResult {
	return FetchResult{Pairs: pairs, Skipped: skipped}
}

// Failure builds a failed fetch result.
func Failure(err error) FetchResult {
	return FetchResult{Err: err}
}

// Snapshot is the normalized market state of one pair at fetch time.
type Snapshot struct {
	Chain         Chain
	PairAddress   string
	DexID         string
	URL           string
	BaseSymbol    string
	BaseName      string
	LiquidityUSD  float64
	BuysM5        int
	SellsM5       int
	PairCreatedAt time.Time
}

// TxnsM5 is the combined 5-minute transaction count.
func (s Snapshot) TxnsM5() int {
	return s.BuysM5 + s.SellsM5
}
