package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/pairwatch/internal/classifier"
	"github.com/hetulpatel/pairwatch/internal/pairs"
	"github.com/hetulpatel/pairwatch/internal/report"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "verdicts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateTables(context.Background()))
	return store
}

func newReport(chain pairs.Chain, addr string, liquidity float64, observed time.Time) report.Report {
	s := pairs.Snapshot{
		Chain:        chain,
		PairAddress:  addr,
		BaseSymbol:   "S" + addr,
		BaseName:     "N" + addr,
		LiquidityUSD: liquidity,
		BuysM5:       20,
		SellsM5:      15,
	}
	return report.Report{
		CycleID:    "cycle",
		ObservedAt: observed,
		Snapshot:   s,
		Verdict:    classifier.Classify(s, classifier.DefaultThresholds()),
	}
}

func TestStore_InsertAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	err := NewSink(store).Emit(ctx, []report.Report{
		newReport(pairs.ChainEthereum, "0xold", 10000, base),
		newReport(pairs.ChainEthereum, "0xnew", 100, base.Add(time.Minute)),
		newReport(pairs.ChainSolana, "sol1", 10000, base),
	})
	require.NoError(t, err)

	got, err := store.Recent(ctx, "ethereum", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0xnew", got[0].PairAddress)
	assert.False(t, got[0].Trustworthy)
	assert.Equal(t, []string{"Low liquidity ($100.00) below minimum ($5,000.00)"}, got[0].Reasons)
	assert.Equal(t, "0xold", got[1].PairAddress)
	assert.True(t, got[1].Trustworthy)
	assert.Empty(t, got[1].Reasons)

	limited, err := store.Recent(ctx, "ethereum", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_FirstVerdictWins(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.InsertReports(ctx, []report.Report{newReport(pairs.ChainBSC, "0xa", 10000, now)}))
	require.NoError(t, store.InsertReports(ctx, []report.Report{newReport(pairs.ChainBSC, "0xa", 1, now.Add(time.Hour))}))

	got, err := store.Recent(ctx, "bsc", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Trustworthy)
}

func TestStore_ClearAndDrop(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertReports(ctx, []report.Report{newReport(pairs.ChainBase, "0xa", 1, time.Now())}))
	require.NoError(t, store.ClearTables(ctx))

	got, err := store.Recent(ctx, "base", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.DropTables(ctx))
	_, err = store.Recent(ctx, "base", 10)
	assert.Error(t, err)
}

func TestStore_EmptyInsertIsNoop(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.InsertReports(context.Background(), nil))
	assert.Contains(t, store.Path(), "verdicts.db")
}
