package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/pairwatch/internal/classifier"
	"github.com/hetulpatel/pairwatch/internal/models"
	"github.com/hetulpatel/pairwatch/internal/pairs"
	"github.com/hetulpatel/pairwatch/internal/report"
	"github.com/hetulpatel/pairwatch/internal/storage/sqlite"
)

func runAdmin(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestAdmin_CreateThenRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	runAdmin(t, "create", "--path", path)

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	s := pairs.Snapshot{Chain: pairs.ChainPolygon, PairAddress: "0xpoly", LiquidityUSD: 10, BuysM5: 1}
	require.NoError(t, store.InsertReports(context.Background(), []report.Report{{
		CycleID:    "c",
		ObservedAt: time.Now(),
		Snapshot:   s,
		Verdict:    classifier.Classify(s, classifier.DefaultThresholds()),
	}}))
	require.NoError(t, store.Close())

	out := runAdmin(t, "recent", "--path", path, "--chain", "polygon")

	var events []models.VerdictEvent
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "0xpoly", events[0].PairAddress)
	assert.False(t, events[0].Trustworthy)

	runAdmin(t, "clear", "--path", path)
	assert.Equal(t, "null\n", runAdmin(t, "recent", "--path", path, "--chain", "polygon"))
}
