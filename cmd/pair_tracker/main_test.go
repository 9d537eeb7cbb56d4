package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/pairwatch/internal/config"
)

func TestRootCmd_RejectsInvalidFlags(t *testing.T) {
	tests := map[string][]string{
		"inverted ratio bounds": {"--min-ratio", "5", "--max-ratio", "1"},
		"zero interval":         {"--interval", "0"},
		"empty chain":           {"--chain", ""},
		"negative liquidity":    {"--min-liquidity", "-10"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			cmd := newRootCmd(config.FromEnv())
			cmd.SetArgs(args)

			err := cmd.ExecuteContext(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestRootCmd_FlagDefaultsFollowConfig(t *testing.T) {
	cfg := config.FromEnv()
	cfg.Thresholds.MinTxnsM5 = 42
	cmd := newRootCmd(cfg)

	flag := cmd.Flags().Lookup("min-txns")
	require.NotNil(t, flag)
	assert.Equal(t, "42", flag.DefValue)
	assert.Equal(t, "30", cmd.Flags().Lookup("interval").DefValue)
}
