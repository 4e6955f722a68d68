package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

// Options tunes how a session allocates seats
type Options struct {
	// Matrix overrides the legal eligibility and fallback table (nil means default)
	Matrix *quota.Matrix

	// TieBreakByID orders equal scores by external id instead of load order
	TieBreakByID bool
}

// Session holds every piece of allocation state: the candidate registry split into pools,
// one ledger per pool and the global round counter.
//
// Lock order is session then pool. Writers of the registry or the round counter take the
// session lock exclusively; round generation shares it and serialises on the pool lock.
type Session struct {
	mu       sync.RWMutex
	matrix   *quota.Matrix
	tieBreak bool
	validate *validator.Validate

	round int
	pools map[model.PoolKey]*pool
}

type pool struct {
	mu         sync.Mutex
	key        model.PoolKey
	candidates []*model.Candidate
	ledger     *model.Ledger
}

// NewSession creates an empty session at round 1
func NewSession(opts Options) (*Session, error) {
	matrix := opts.Matrix
	if matrix == nil {
		matrix = quota.DefaultMatrix()
	}
	if err := matrix.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	validate := validator.New()
	if err := quota.RegisterValidation(validate); err != nil {
		return nil, fmt.Errorf("failed to register quota validation: %w", err)
	}

	return &Session{
		matrix:   matrix,
		tieBreak: opts.TieBreakByID,
		validate: validate,
		round:    1,
		pools:    make(map[model.PoolKey]*pool),
	}, nil
}

// Matrix returns the eligibility and fallback table the session allocates with
func (s *Session) Matrix() *quota.Matrix {
	return s.matrix
}

// Load registers a batch of candidates into a pool. Every record is validated first and
// a single bad record rejects the whole batch.
func (s *Session) Load(key model.PoolKey, candidates []model.Candidate) (int, error) {
	batch := make([]model.Candidate, len(candidates))
	for i, c := range candidates {
		c.Pool = key
		batch[i] = c
	}
	return s.LoadBatch(batch)
}

// LoadBatch registers candidates that carry their own pool key, as rows of a combined
// import file do. The batch is all-or-nothing across pools.
func (s *Session) LoadBatch(candidates []model.Candidate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Step 1: Validate every record before touching the registry
	seen := make(map[model.PoolKey]map[string]bool)
	for i := range candidates {
		c := &candidates[i]

		if err := s.validate.Struct(c.Pool); err != nil {
			return 0, validationErrorf("invalid candidate %s: pool key incomplete: %v", recordRef(c, i), err)
		}
		if err := s.validate.Struct(c); err != nil {
			return 0, validationErrorf("invalid candidate %s: %v", recordRef(c, i), err)
		}

		ids, ok := seen[c.Pool]
		if !ok {
			ids = make(map[string]bool)
			if existing, ok := s.pools[c.Pool]; ok {
				for _, e := range existing.candidates {
					ids[e.ExternalID] = true
				}
			}
			seen[c.Pool] = ids
		}
		if ids[c.ExternalID] {
			return 0, validationErrorf("invalid candidate %s: duplicate external id in pool %s", recordRef(c, i), c.Pool)
		}
		ids[c.ExternalID] = true
	}

	// Step 2: Commit in load order
	for i := range candidates {
		c := candidates[i].Clone()
		c.ID = uuid.New().String()
		c.Status = model.StatusPending
		c.Assigned = nil
		c.Round = nil
		c.Classification = nil

		p := s.poolLocked(c.Pool)
		p.candidates = append(p.candidates, c)
	}

	return len(candidates), nil
}

// SetLedger initialises a pool's offered seats; balances start equal to the offer.
// It must precede round generation.
func (s *Session) SetLedger(key model.PoolKey, offered quota.Counts) error {
	if err := s.validate.Struct(key); err != nil {
		return validationErrorf("invalid pool key %s: %v", key, err)
	}
	for _, c := range quota.Codes {
		if offered[c] < 0 {
			return validationErrorf("offered seats for %s must not be negative, got %d", c, offered[c])
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := model.NewLedger(offered)
	s.poolLocked(key).ledger = &ledger
	return nil
}

// Ledger returns a copy of the pool's seat accounting
func (s *Session) Ledger(key model.PoolKey) (model.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[key]
	if !ok {
		return model.Ledger{}, &NotFoundError{Resource: "pool", Key: key.String()}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ledger == nil {
		return model.Ledger{}, &NotFoundError{Resource: "ledger", Key: key.String()}
	}
	return *p.ledger, nil
}

// Round returns the round the next call for the pool will be stamped with
func (s *Session) Round(key model.PoolKey) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.pools[key]; !ok {
		return 0, &NotFoundError{Resource: "pool", Key: key.String()}
	}
	return s.round, nil
}

// CurrentRound returns the global round counter
func (s *Session) CurrentRound() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}

// Pools lists every known pool ordered by key
func (s *Session) Pools() []model.PoolKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedKeysLocked()
}

// Candidates returns copies of a pool's candidates in load order
func (s *Session) Candidates(key model.PoolKey) ([]*model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[key]
	if !ok {
		return nil, &NotFoundError{Resource: "pool", Key: key.String()}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneAll(p.candidates), nil
}

// Reset clears the registry, every ledger and the round counter
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pools = make(map[model.PoolKey]*pool)
	s.round = 1
}

// poolLocked returns the pool for key, creating it. Caller holds the session write lock.
func (s *Session) poolLocked(key model.PoolKey) *pool {
	p, ok := s.pools[key]
	if !ok {
		p = &pool{key: key}
		s.pools[key] = p
	}
	return p
}

func recordRef(c *model.Candidate, index int) string {
	if c.ExternalID != "" {
		return fmt.Sprintf("%q", c.ExternalID)
	}
	return fmt.Sprintf("at row %d", index+1)
}

func cloneAll(candidates []*model.Candidate) []*model.Candidate {
	out := make([]*model.Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = c.Clone()
	}
	return out
}

func sortKeys(keys []model.PoolKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
