package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/pairwatch/internal/pairs"
)

func snapshot(liquidity float64, buys, sells int) pairs.Snapshot {
	return pairs.Snapshot{
		Chain:        pairs.ChainEthereum,
		PairAddress:  "0xpair",
		BaseSymbol:   "TKN",
		BaseName:     "Token",
		LiquidityUSD: liquidity,
		BuysM5:       buys,
		SellsM5:      sells,
	}
}

func TestBuySellRatio(t *testing.T) {
	tests := []struct {
		name        string
		buys, sells int
		want        float64
	}{
		{"no activity is neutral", 0, 0, 1},
		{"buys only uses buys", 7, 0, 7},
		{"single buy", 1, 0, 1},
		{"sells only", 0, 4, 0},
		{"exact division", 20, 15, 20.0 / 15.0},
		{"fraction", 1, 8, 0.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuySellRatio(tt.buys, tt.sells))
		})
	}
}

func TestClassify_Trustworthy(t *testing.T) {
	v := Classify(snapshot(10000, 20, 15), DefaultThresholds())

	assert.True(t, v.Trustworthy)
	assert.Empty(t, v.Reasons)
	assert.InDelta(t, 1.33, v.BuySellRatio, 0.01)
	assert.Equal(t, "TRUSTWORTHY", v.Status())
}

func TestClassify_LowLiquidityAndVolume(t *testing.T) {
	v := Classify(snapshot(1000, 5, 2), DefaultThresholds())

	assert.False(t, v.Trustworthy)
	assert.Equal(t, 2.5, v.BuySellRatio)
	require.Len(t, v.Reasons, 2)
	assert.Equal(t, "Low liquidity ($1,000.00) below minimum ($5,000.00)", v.Reasons[0])
	assert.Equal(t, "Low transaction volume (7 total) below minimum (10)", v.Reasons[1])
	assert.Equal(t, "UNTRUSTWORTHY", v.Status())
}

func TestClassify_UnbalancedRatio(t *testing.T) {
	v := Classify(snapshot(10000, 100, 1), DefaultThresholds())

	assert.False(t, v.Trustworthy)
	assert.Equal(t, 100.0, v.BuySellRatio)
	require.Len(t, v.Reasons, 1)
	assert.Equal(t, "Unbalanced buy/sell ratio (100.00)", v.Reasons[0])
}

func TestClassify_AllChecksAccumulate(t *testing.T) {
	v := Classify(snapshot(0, 0, 3), DefaultThresholds())

	require.Len(t, v.Reasons, 3)
	assert.Contains(t, v.Reasons[0], "Low liquidity")
	assert.Contains(t, v.Reasons[1], "Low transaction volume (3 total)")
	assert.Contains(t, v.Reasons[2], "Unbalanced buy/sell ratio (0.00)")
}

func TestClassify_RatioBoundsInclusive(t *testing.T) {
	th := DefaultThresholds()

	atMax := Classify(snapshot(10000, 100, 10), th)
	assert.True(t, atMax.Trustworthy, "ratio equal to max must pass: %v", atMax.Reasons)

	atMin := Classify(snapshot(10000, 1, 10), th)
	assert.True(t, atMin.Trustworthy, "ratio equal to min must pass: %v", atMin.Reasons)

	idle := Classify(snapshot(10000, 0, 0), Thresholds{MinLiquidityUSD: 5000, MinBuySellRatio: 0.1, MaxBuySellRatio: 10})
	assert.True(t, idle.Trustworthy)
	assert.Equal(t, 1.0, idle.BuySellRatio)
}

func TestClassify_ReasonPresentIffCheckFails(t *testing.T) {
	th := DefaultThresholds()
	cases := []pairs.Snapshot{
		snapshot(4999.99, 6, 4),
		snapshot(5000, 6, 3),
		snapshot(5000, 11, 1),
		snapshot(5000, 0, 10),
		snapshot(1e6, 50, 50),
	}
	for _, s := range cases {
		v := Classify(s, th)
		ratio := BuySellRatio(s.BuysM5, s.SellsM5)

		liquidityFails := s.LiquidityUSD < th.MinLiquidityUSD
		volumeFails := s.TxnsM5() < th.MinTxnsM5
		ratioFails := ratio < th.MinBuySellRatio || ratio > th.MaxBuySellRatio

		assert.Equal(t, liquidityFails, containsPrefix(v.Reasons, "Low liquidity"), "liquidity for %+v", s)
		assert.Equal(t, volumeFails, containsPrefix(v.Reasons, "Low transaction volume"), "volume for %+v", s)
		assert.Equal(t, ratioFails, containsPrefix(v.Reasons, "Unbalanced buy/sell ratio"), "ratio for %+v", s)
		assert.Equal(t, len(v.Reasons) == 0, v.Trustworthy)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	s := snapshot(1000, 5, 2)
	th := DefaultThresholds()

	assert.Equal(t, Classify(s, th), Classify(s, th))
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	bad := DefaultThresholds()
	bad.MinBuySellRatio, bad.MaxBuySellRatio = 5, 1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidThresholds)

	bad = DefaultThresholds()
	bad.MinLiquidityUSD = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidThresholds)

	bad = DefaultThresholds()
	bad.MinTxnsM5 = -3
	assert.ErrorIs(t, bad.Validate(), ErrInvalidThresholds)
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "5,000.00", FormatUSD(5000))
	assert.Equal(t, "1,234,567.89", FormatUSD(1234567.89))
	assert.Equal(t, "0.00", FormatUSD(0))
}

func containsPrefix(reasons []string, prefix string) bool {
	for _, r := range reasons {
		if len(r) >= len(prefix) && r[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
