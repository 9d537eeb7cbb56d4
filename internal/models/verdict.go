package models

import (
	"time"

	"github.com/hetulpatel/pairwatch/internal/report"
)

// VerdictEvent is the payload placed on Kafka topics and stored as raw JSON.
type VerdictEvent struct {
	CycleID      string    `json:"cycle_id"`
	Chain        string    `json:"chain"`
	PairAddress  string    `json:"pair_address"`
	DexID        string    `json:"dex_id,omitempty"`
	URL          string    `json:"url,omitempty"`
	BaseSymbol   string    `json:"base_symbol"`
	BaseName     string    `json:"base_name"`
	LiquidityUSD float64   `json:"liquidity_usd"`
	BuysM5       int       `json:"buys_m5"`
	SellsM5      int       `json:"sells_m5"`
	BuySellRatio float64   `json:"buy_sell_ratio"`
	Trustworthy  bool      `json:"trustworthy"`
	Reasons      []string  `json:"reasons"`
	ObservedAt   time.Time `json:"observed_at"`
}

// NewVerdictEvent flattens a report for transport.
func NewVerdictEvent(r report.Report) VerdictEvent {
	reasons := r.Verdict.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return VerdictEvent{
		CycleID:      r.CycleID,
		Chain:        string(r.Snapshot.Chain),
		PairAddress:  r.Snapshot.PairAddress,
		DexID:        r.Snapshot.DexID,
		URL:          r.Snapshot.URL,
		BaseSymbol:   r.Snapshot.BaseSymbol,
		BaseName:     r.Snapshot.BaseName,
		LiquidityUSD: r.Snapshot.LiquidityUSD,
		BuysM5:       r.Snapshot.BuysM5,
		SellsM5:      r.Snapshot.SellsM5,
		BuySellRatio: r.Verdict.BuySellRatio,
		Trustworthy:  r.Verdict.Trustworthy,
		Reasons:      reasons,
		ObservedAt:   r.ObservedAt.UTC(),
	}
}
