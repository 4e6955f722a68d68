package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishCall_Success(t *testing.T) {
	store := calledStore(t)
	cfg := testConfig()
	cfg.Sheets.CallSheetID = "calls456"
	sheets := &mockCallSheet{}

	result, err := PublishCall(context.Background(), store, sheets, cfg, zap.NewNop(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Chamada 1", result.Tab)
	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, "calls456", sheets.gotSheetID)
	assert.Equal(t, "Chamada 1", sheets.gotTab)
	require.Len(t, sheets.gotRecords, 3, "header plus two called candidates")
	assert.Equal(t, "CPF", sheets.gotRecords[0][0])
	assert.Equal(t, "111", sheets.gotRecords[1][0])
}

func TestPublishCall_NotConfigured(t *testing.T) {
	_, err := PublishCall(context.Background(), calledStore(t), &mockCallSheet{}, testConfig(), zap.NewNop(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "callSheetID")
}

func TestPublishCall_ClientError(t *testing.T) {
	cfg := testConfig()
	cfg.Sheets.CallSheetID = "calls456"
	publishErr := errors.New("quota exceeded")

	_, err := PublishCall(context.Background(), calledStore(t), &mockCallSheet{err: publishErr}, cfg, zap.NewNop(), 1)
	assert.ErrorIs(t, err, publishErr)
}
