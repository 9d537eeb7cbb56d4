package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hetulpatel/pairwatch/internal/classifier"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	rule            = "---------------------------------------------------------"
)

// Console writes a human-readable block per report.
type Console struct {
	w io.Writer
}

// NewConsole builds a console sink; a nil writer means stdout.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Name() string {
	return "console"
}

func (c *Console) Emit(_ context.Context, reports []Report) error {
	bw := bufio.NewWriter(c.w)
	for _, r := range reports {
		writeReport(bw, r)
	}
	return bw.Flush()
}

func writeReport(w io.Writer, r Report) {
	s, v := r.Snapshot, r.Verdict
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "[%s] New Token Detected!\n", r.ObservedAt.Format(timestampLayout))
	fmt.Fprintf(w, "Status: %s\n", v.Status())
	fmt.Fprintf(w, "Token Name: %s (%s)\n", s.BaseName, s.BaseSymbol)
	fmt.Fprintf(w, "Pair Address: %s\n", s.PairAddress)
	fmt.Fprintf(w, "Liquidity (USD): $%s\n", classifier.FormatUSD(s.LiquidityUSD))
	fmt.Fprintf(w, "Transactions (5m): Buys=%d, Sells=%d\n", s.BuysM5, s.SellsM5)
	fmt.Fprintf(w, "Buy/Sell Ratio: %.2f\n", v.BuySellRatio)
	if !v.Trustworthy {
		fmt.Fprintln(w, "Reasons for UNTRUSTWORTHY flag:")
		for _, reason := range v.Reasons {
			fmt.Fprintf(w, "  - %s\n", reason)
		}
	}
	fmt.Fprintln(w, rule)
}
