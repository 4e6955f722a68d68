package db

// Candidate is a candidate row. Position keeps the load order inside the pool, which the
// ranking relies on to break score ties.
type Candidate struct {
	ID         string
	ExternalID string
	Unit       string
	Program    string
	Shift      string
	Position   int
	Name       string
	Email      string
	Score      float64
	Declared   string
	Option     int
	Status     string
	Assigned   string // Empty unless selected
	Round      *int
}

// Ledger is the seat accounting of one quota in one pool
type Ledger struct {
	Unit    string
	Program string
	Shift   string
	Quota   string
	Offered int
	Balance int
}

// Snapshot is the full persisted session: round counter, candidates and ledgers
type Snapshot struct {
	Round      int
	Candidates []Candidate
	Ledgers    []Ledger
	// Pools without candidates or ledger rows still need to survive a reload
	Pools []Pool
}

// Pool is a pool key row
type Pool struct {
	Unit    string
	Program string
	Shift   string
}

// Call is the audit record of a generated call for one pool
type Call struct {
	ID          string
	Round       int
	Unit        string
	Program     string
	Shift       string
	Multiplier  float64
	Offered     int
	Filled      int
	GeneratedAt string // RFC3339
}
