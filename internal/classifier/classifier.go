package classifier

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/hetulpatel/pairwatch/internal/pairs"
)

// ErrInvalidThresholds is returned by Thresholds.Validate.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds are the fixed trust criteria applied to every new pair.
type Thresholds struct {
	MinLiquidityUSD float64
	MinTxnsM5       int
	MinBuySellRatio float64
	MaxBuySellRatio float64
}

// DefaultThresholds returns the stock criteria: $5,000 liquidity, 10 trades in
// five minutes and a buy/sell ratio between 0.1 and 10.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinLiquidityUSD: 5000,
		MinTxnsM5:       10,
		MinBuySellRatio: 0.1,
		MaxBuySellRatio: 10.0,
	}
}

func (t Thresholds) Validate() error {
	if t.MinLiquidityUSD < 0 {
		return fmt.Errorf("%w: min liquidity %.2f is negative", ErrInvalidThresholds, t.MinLiquidityUSD)
	}
	if t.MinTxnsM5 < 0 {
		return fmt.Errorf("%w: min txns %d is negative", ErrInvalidThresholds, t.MinTxnsM5)
	}
	if t.MinBuySellRatio < 0 || t.MinBuySellRatio > t.MaxBuySellRatio {
		return fmt.Errorf("%w: buy/sell ratio bounds [%.2f, %.2f]", ErrInvalidThresholds, t.MinBuySellRatio, t.MaxBuySellRatio)
	}
	return nil
}

// Verdict is the trust decision for one pair.
type Verdict struct {
	Trustworthy  bool
	Reasons      []string
	BuySellRatio float64
}

// Status renders the verdict the way reports print it.
func (v Verdict) Status() string {
	if v.Trustworthy {
		return "TRUSTWORTHY"
	}
	return "UNTRUSTWORTHY"
}

// BuySellRatio divides buys by sells. With no sells the buys count is used as is,
// and a pair with no activity at all is treated as balanced (1).
func BuySellRatio(buys, sells int) float64 {
	switch {
	case sells > 0:
		return float64(buys) / float64(sells)
	case buys > 0:
		return float64(buys)
	default:
		return 1
	}
}

// Classify evaluates every criterion independently; reasons keep the order
// liquidity, volume, ratio.
func Classify(s pairs.Snapshot, t Thresholds) Verdict {
	ratio := BuySellRatio(s.BuysM5, s.SellsM5)
	var reasons []string

	if s.LiquidityUSD < t.MinLiquidityUSD {
		reasons = append(reasons, fmt.Sprintf("Low liquidity ($%s) below minimum ($%s)",
			FormatUSD(s.LiquidityUSD), FormatUSD(t.MinLiquidityUSD)))
	}
	if total := s.TxnsM5(); total < t.MinTxnsM5 {
		reasons = append(reasons, fmt.Sprintf("Low transaction volume (%d total) below minimum (%d)", total, t.MinTxnsM5))
	}
	if ratio < t.MinBuySellRatio || ratio > t.MaxBuySellRatio {
		reasons = append(reasons, fmt.Sprintf("Unbalanced buy/sell ratio (%.2f)", ratio))
	}

	return Verdict{
		Trustworthy:  len(reasons) == 0,
		Reasons:      reasons,
		BuySellRatio: ratio,
	}
}

// FormatUSD renders an amount with thousands separators and two decimals.
func FormatUSD(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}
