package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seatcall/seatcall/pkg/core/engine"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

func TestViewRound_CallListAndReport(t *testing.T) {
	store := calledStore(t)
	ctx := context.Background()
	logger := zap.NewNop()

	_, err := Disqualify(ctx, store, testConfig(), logger, []string{"222"})
	require.NoError(t, err)

	called, err := ViewRound(ctx, store, testConfig(), logger, 1, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"111"}, externalIDs(called))

	touched, err := ViewRound(ctx, store, testConfig(), logger, 1, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"111", "222"}, externalIDs(touched))
}

func TestViewRound_UnknownRound(t *testing.T) {
	_, err := ViewRound(context.Background(), calledStore(t), testConfig(), zap.NewNop(), 7, false)
	require.Error(t, err)

	var notFound *engine.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestExportCall_WritesCSV(t *testing.T) {
	var buf bytes.Buffer

	n, err := ExportCall(context.Background(), calledStore(t), testConfig(), zap.NewNop(), &buf, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "CPF,Nome,Email"))
	assert.True(t, strings.HasPrefix(lines[1], "111,Ana,ana@example.com"))
}

func TestClassificationReport(t *testing.T) {
	var buf bytes.Buffer

	candidates, err := ClassificationReport(context.Background(), seededStore(t), testConfig(), zap.NewNop(), medicina, &buf)
	require.NoError(t, err)

	require.Len(t, candidates, 3)
	positions := make(map[string]int)
	for _, c := range candidates {
		positions[c.ExternalID] = c.Classification[quota.AC]
	}
	assert.Equal(t, map[string]int{"111": 1, "222": 2, "333": 3}, positions)
	assert.Contains(t, buf.String(), "Classificação AC")
}

func TestClassificationReport_UnknownPool(t *testing.T) {
	_, err := ClassificationReport(context.Background(), &mockStore{}, testConfig(), zap.NewNop(), medicina, nil)

	var notFound *engine.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
