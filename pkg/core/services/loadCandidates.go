package services

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/core/engine"
	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/db"
	"github.com/seatcall/seatcall/pkg/importer"
)

// LoadResult summarises a candidate import
type LoadResult struct {
	Loaded int
	// Pools counts the loaded candidates per pool
	Pools map[model.PoolKey]int
}

// CandidateSheetClient defines the sheets operations needed to import candidates
type CandidateSheetClient interface {
	ListCandidates(spreadsheetID, tab string, opts importer.Options) ([]model.Candidate, error)
}

// LoadCandidatesFromCSV parses a candidate file and appends its rows to the stored session.
// pool is used only when the file has no Campus/Curso/Turno columns.
func LoadCandidatesFromCSV(
	ctx context.Context,
	store db.SessionStore,
	cfg *config.Config,
	logger *zap.Logger,
	r io.Reader,
	pool model.PoolKey,
) (*LoadResult, error) {
	logger.Debug("Starting loadCandidatesFromCSV", zap.String("pool", pool.String()))

	// Step 1: Parse the file
	candidates, err := importer.ReadCSV(r, importer.Options{Pool: pool})
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate file: %w", err)
	}

	logger.Debug("Parsed candidate file", zap.Int("rows", len(candidates)))

	// Step 2: Register them
	return loadCandidates(ctx, store, cfg, logger, candidates)
}

// ImportCandidatesFromSheet reads the configured candidate tab and appends its rows to the
// stored session
func ImportCandidatesFromSheet(
	ctx context.Context,
	store db.SessionStore,
	sheets CandidateSheetClient,
	cfg *config.Config,
	logger *zap.Logger,
	pool model.PoolKey,
) (*LoadResult, error) {
	if cfg.Sheets.CandidateSheetID == "" {
		return nil, fmt.Errorf("sheets.candidateSheetID is not configured")
	}

	logger.Debug("Starting importCandidatesFromSheet",
		zap.String("sheet_id", cfg.Sheets.CandidateSheetID),
		zap.String("tab", cfg.Sheets.CandidatesTab))

	// Step 1: Fetch and parse the tab
	candidates, err := sheets.ListCandidates(cfg.Sheets.CandidateSheetID, cfg.Sheets.CandidatesTab, importer.Options{Pool: pool})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	logger.Debug("Fetched candidate rows", zap.Int("rows", len(candidates)))

	// Step 2: Register them
	return loadCandidates(ctx, store, cfg, logger, candidates)
}

func loadCandidates(ctx context.Context, store db.SessionStore, cfg *config.Config, logger *zap.Logger, candidates []model.Candidate) (*LoadResult, error) {
	result := &LoadResult{Pools: make(map[model.PoolKey]int)}

	_, err := update(ctx, store, cfg, logger, func(session *engine.Session) error {
		n, err := session.LoadBatch(candidates)
		if err != nil {
			return fmt.Errorf("failed to load candidates: %w", err)
		}
		result.Loaded = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		result.Pools[c.Pool]++
	}

	logger.Info("Candidates loaded",
		zap.Int("loaded", result.Loaded),
		zap.Int("pools", len(result.Pools)))

	return result, nil
}
