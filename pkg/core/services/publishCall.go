package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/clients/sheetsclient"
	"github.com/seatcall/seatcall/pkg/db"
	"github.com/seatcall/seatcall/pkg/importer"
)

// CallSheetClient defines the sheets operations needed to publish a call
type CallSheetClient interface {
	PublishCall(spreadsheetID, tabTitle string, records [][]string) error
}

// PublishResult reports where a call was published
type PublishResult struct {
	Round      int
	Tab        string
	Candidates int
}

// PublishCall writes a round's call list to its own tab of the configured call spreadsheet
func PublishCall(
	ctx context.Context,
	store db.SessionStore,
	sheets CallSheetClient,
	cfg *config.Config,
	logger *zap.Logger,
	round int,
) (*PublishResult, error) {
	if cfg.Sheets.CallSheetID == "" {
		return nil, fmt.Errorf("sheets.callSheetID is not configured")
	}

	logger.Debug("Starting publishCall", zap.Int("round", round))

	// Step 1: Fetch the call list
	candidates, err := ViewRound(ctx, store, cfg, logger, round, false)
	if err != nil {
		return nil, err
	}

	// Step 2: Publish it
	tab := sheetsclient.CallTabTitle(round)
	if err := sheets.PublishCall(cfg.Sheets.CallSheetID, tab, importer.CallRecords(candidates)); err != nil {
		return nil, fmt.Errorf("failed to publish call: %w", err)
	}

	logger.Info("Call published",
		zap.Int("round", round),
		zap.String("tab", tab),
		zap.Int("candidates", len(candidates)))

	return &PublishResult{Round: round, Tab: tab, Candidates: len(candidates)}, nil
}
