package models

import "time"

// InstrumentType discriminates the two hedge instrument families. It is a
// closed set: every switch over it handles both members and nothing else.
type InstrumentType string

const (
	// InstrumentPut is a protective index put position.
	InstrumentPut InstrumentType = "put"
	// InstrumentInverseFund is a leveraged inverse fund position.
	InstrumentInverseFund InstrumentType = "inverse_fund"
)

// HedgePosition is a currently-held or archived hedge position. Put and
// inverse-fund positions share the struct; the InstrumentType tag decides
// which field group is meaningful. Mutated only by explicit roll/close
// operations, never by an analysis call.
type HedgePosition struct {
	ID         int64          `json:"-"`
	Instrument InstrumentType `json:"instrument"`
	Underlying string         `json:"underlying"`
	EntryDate  time.Time      `json:"entry_date"`

	// Put fields.
	Strike       float64   `json:"strike,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	Contracts    int       `json:"contracts,omitempty"`
	EntryPremium float64   `json:"entry_premium,omitempty"`

	// Inverse-fund fields.
	EntryNAV float64 `json:"entry_nav,omitempty"`
	Shares   float64 `json:"shares,omitempty"`

	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CloseReason string     `json:"close_reason,omitempty"`
}

// Key returns the (underlying, strike, expiry) store key for a put position,
// or the underlying alone for an inverse-fund position.
func (p HedgePosition) Key() string {
	if p.Instrument == InstrumentInverseFund {
		return p.Underlying
	}
	return PositionKey(p.Underlying, p.Strike, p.Expiry)
}

// DTE returns whole days to expiration from asOf. Inverse-fund positions
// have no expiry; they report -1.
func (p HedgePosition) DTE(asOf time.Time) int {
	if p.Instrument == InstrumentInverseFund {
		return -1
	}
	return int(p.Expiry.Sub(asOf).Hours() / 24)
}

// PositionState is the read-time lifecycle state of a position. It is never
// persisted; it is recomputed from the stored expiration and the supplied
// asOf date, which avoids state drift.
type PositionState string

const (
	StateActive         PositionState = "active"
	StateNearExpiration PositionState = "near_expiration"
	StateExpired        PositionState = "expired"
	StateClosed         PositionState = "closed"
)

// State derives the lifecycle state for asOf with the given near-expiration
// DTE threshold.
func (p HedgePosition) State(asOf time.Time, nearDTE int) PositionState {
	if p.ClosedAt != nil {
		return StateClosed
	}
	if p.Instrument == InstrumentInverseFund {
		return StateActive
	}
	if !p.Expiry.After(asOf) {
		return StateExpired
	}
	if p.DTE(asOf) <= nearDTE {
		return StateNearExpiration
	}
	return StateActive
}

// RollSuggestion is a candidate replacement for a near-expiration put.
// Produced fresh per call, never persisted. Premiums and residuals are
// per-share; NetCost scales to the full position.
type RollSuggestion struct {
	Position    HedgePosition      `json:"position"`
	Candidate   OptionContractSpec `json:"candidate"`
	NewPremium  float64            `json:"new_premium"`
	OldResidual float64            `json:"old_residual"`
	CostToRoll  float64            `json:"cost_to_roll"` // NewPremium - OldResidual
	NetCost     float64            `json:"net_cost"`     // CostToRoll * contracts * multiplier
}

// SkippedPosition records a position excluded from a roll scan, typically
// because its underlying had no chain data in the snapshot.
type SkippedPosition struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// RollRecord is one immutable entry in the append-only roll-history log.
type RollRecord struct {
	ID            int64     `json:"id"`
	RolledAt      time.Time `json:"rolled_at"`
	ClosedSummary string    `json:"closed"`
	OpenedSummary string    `json:"opened"`
	NetCost       float64   `json:"net_cost"`
	Reason        string    `json:"reason"`
}
