package model

import (
	"fmt"

	"github.com/seatcall/seatcall/pkg/core/quota"
)

// Status is the lifecycle state of a candidate
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusSelected     Status = "SELECTED"
	StatusDisqualified Status = "DISQUALIFIED"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusSelected || s == StatusDisqualified
}

// PoolKey identifies an independent allocation universe
type PoolKey struct {
	Unit    string `json:"unit" validate:"required"`
	Program string `json:"program" validate:"required"`
	Shift   string `json:"shift" validate:"required"`
}

func (k PoolKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Unit, k.Program, k.Shift)
}

// Candidate is a ranked applicant inside a pool
type Candidate struct {
	// ID is the internal identifier, unique across the session
	ID string `json:"id"`

	// ExternalID is the applicant's identifier (e.g. CPF). Unique within a pool,
	// the same person may appear in several pools.
	ExternalID string `json:"externalId" validate:"required"`

	Pool     PoolKey    `json:"pool"`
	Name     string     `json:"name,omitempty"`
	Email    string     `json:"email,omitempty" validate:"omitempty,email"`
	Score    float64    `json:"score" validate:"gte=0"`
	Declared quota.Code `json:"declared" validate:"quotacode"`

	// Option is the candidate's choice rank. Candidates are processed in phases by
	// ascending option; zero means first choice.
	Option int `json:"option,omitempty" validate:"gte=0"`

	Status Status `json:"status"`

	// Assigned is set only while Status is StatusSelected
	Assigned *quota.Code `json:"assigned,omitempty"`

	// Round is the call in which the candidate was selected
	Round *int `json:"round,omitempty"`

	// Classification holds the 1-based rank per quota list the candidate belongs to
	Classification map[quota.Code]int `json:"classification,omitempty"`
}

// Phase returns the processing phase derived from the choice rank
func (c *Candidate) Phase() int {
	if c.Option <= 0 {
		return 1
	}
	return c.Option
}

// IsPending reports whether the candidate can still be picked
func (c *Candidate) IsPending() bool {
	return c.Status == StatusPending
}

// Select marks the candidate as called under the given quota in the given round
func (c *Candidate) Select(code quota.Code, round int) {
	assigned := code
	r := round
	c.Status = StatusSelected
	c.Assigned = &assigned
	c.Round = &r
}

// Disqualify revokes a selection. The round is kept so reports can still place the candidate.
func (c *Candidate) Disqualify() {
	c.Status = StatusDisqualified
	c.Assigned = nil
}

// Clone returns a deep copy of the candidate
func (c *Candidate) Clone() *Candidate {
	out := *c
	if c.Assigned != nil {
		a := *c.Assigned
		out.Assigned = &a
	}
	if c.Round != nil {
		r := *c.Round
		out.Round = &r
	}
	if c.Classification != nil {
		out.Classification = make(map[quota.Code]int, len(c.Classification))
		for k, v := range c.Classification {
			out.Classification[k] = v
		}
	}
	return &out
}

// LedgerEntry is the seat accounting for one quota in one pool
type LedgerEntry struct {
	Offered int `json:"offered"`
	Balance int `json:"balance"`
}

// Ledger is the seat accounting for a pool, indexed by quota code
type Ledger [quota.NumCodes]LedgerEntry

// NewLedger initialises every balance to its offered count
func NewLedger(offered quota.Counts) Ledger {
	var l Ledger
	for _, c := range quota.Codes {
		l[c] = LedgerEntry{Offered: offered[c], Balance: offered[c]}
	}
	return l
}

// Offered returns the original offered seats per quota
func (l Ledger) Offered() quota.Counts {
	var out quota.Counts
	for _, c := range quota.Codes {
		out[c] = l[c].Offered
	}
	return out
}

// Balances returns the current balance per quota
func (l Ledger) Balances() quota.Counts {
	var out quota.Counts
	for _, c := range quota.Codes {
		out[c] = l[c].Balance
	}
	return out
}

// Reclaim returns one seat to the given quota
func (l *Ledger) Reclaim(code quota.Code) {
	l[code].Balance++
}

// LedgerRow is a display row of the ledger
type LedgerRow struct {
	Quota     quota.Code `json:"quota"`
	Offered   int        `json:"offered"`
	Available int        `json:"available"`
}

// Rows lists the ledger in cascade order
func (l Ledger) Rows() []LedgerRow {
	rows := make([]LedgerRow, 0, quota.NumCodes)
	for _, c := range quota.Codes {
		rows = append(rows, LedgerRow{Quota: c, Offered: l[c].Offered, Available: l[c].Balance})
	}
	return rows
}
