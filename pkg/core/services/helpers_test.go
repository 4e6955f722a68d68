package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
	"github.com/seatcall/seatcall/pkg/db"
	"github.com/seatcall/seatcall/pkg/importer"
)

var errStore = errors.New("store unavailable")

var medicina = model.PoolKey{Unit: "Centro", Program: "Medicina", Shift: "Integral"}

var now = time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC)

const candidateCSV = `CPF;Nome;Email;Nota Final;Cota do candidato;Campus;Curso;Turno
111;Ana;ana@example.com;90;AC;Centro;Medicina;Integral
222;Bruno;;80;AC;Centro;Medicina;Integral
333;Carla;carla@example.com;70;AC;Centro;Medicina;Integral
`

// mockStore keeps the session in memory like the real stores do
type mockStore struct {
	snapshot     *db.Snapshot
	calls        []db.Call
	replaceCount int
	cleared      bool

	getErr     error
	replaceErr error
	insertErr  error
}

func (m *mockStore) GetSnapshot(ctx context.Context) (*db.Snapshot, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.snapshot, nil
}

func (m *mockStore) ReplaceSnapshot(ctx context.Context, snapshot *db.Snapshot) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.snapshot = snapshot
	m.replaceCount++
	return nil
}

func (m *mockStore) GetCalls(ctx context.Context) ([]db.Call, error) {
	return append([]db.Call(nil), m.calls...), nil
}

func (m *mockStore) InsertCalls(ctx context.Context, calls []db.Call) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.calls = append(m.calls, calls...)
	return nil
}

func (m *mockStore) ClearAll(ctx context.Context) error {
	m.snapshot = nil
	m.calls = nil
	m.cleared = true
	return nil
}

type mockCandidateSheet struct {
	candidates []model.Candidate
	err        error

	gotSheetID string
	gotTab     string
}

func (m *mockCandidateSheet) ListCandidates(spreadsheetID, tab string, opts importer.Options) ([]model.Candidate, error) {
	m.gotSheetID, m.gotTab = spreadsheetID, tab
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates, nil
}

type mockCallSheet struct {
	err        error
	gotSheetID string
	gotTab     string
	gotRecords [][]string
}

func (m *mockCallSheet) PublishCall(spreadsheetID, tabTitle string, records [][]string) error {
	m.gotSheetID, m.gotTab, m.gotRecords = spreadsheetID, tabTitle, records
	return m.err
}

type sentEmail struct {
	to, subject, body string
}

type mockMailer struct {
	sent   []sentEmail
	failTo map[string]error
}

func (m *mockMailer) SendEmail(to, subject, body string) error {
	if err, ok := m.failTo[to]; ok {
		return err
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", Path: "test.db"},
	}
}

func seats(counts map[quota.Code]int) quota.Counts {
	var out quota.Counts
	for code, n := range counts {
		out[code] = n
	}
	return out
}

// seededStore loads candidateCSV and offers two AC seats
func seededStore(t *testing.T) *mockStore {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	store := &mockStore{}

	_, err := LoadCandidatesFromCSV(ctx, store, testConfig(), logger, strings.NewReader(candidateCSV), model.PoolKey{})
	require.NoError(t, err)

	_, err = DefineSeats(ctx, store, testConfig(), logger, medicina, seats(map[quota.Code]int{quota.AC: 2}))
	require.NoError(t, err)

	return store
}

// calledStore is seededStore after round 1 was generated
func calledStore(t *testing.T) *mockStore {
	t.Helper()
	store := seededStore(t)

	_, err := GenerateCall(context.Background(), store, testConfig(), zap.NewNop(), &medicina, 1, now)
	require.NoError(t, err)

	return store
}

func externalIDs(candidates []*model.Candidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ExternalID
	}
	return ids
}
