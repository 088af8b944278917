// Package marketdata defines the already-fetched market inputs the numeric
// core consumes. Retrieval is the caller's job; everything here is loaded
// synchronously up front so pricing, sizing, and simulation stay I/O-free.
package marketdata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"portfolio-hedger/internal/errors"
	"portfolio-hedger/internal/models"
)

// Snapshot is a point-in-time set of quotes keyed by ticker.
type Snapshot struct {
	AsOf   time.Time               `json:"as_of"`
	Quotes map[string]models.Quote `json:"quotes"`
}

// Quote returns the quote for a ticker, or a per-item NoDataError.
func (s *Snapshot) Quote(underlying string) (models.Quote, error) {
	q, ok := s.Quotes[strings.ToUpper(underlying)]
	if !ok {
		return models.Quote{}, errors.NewNoDataError("market", underlying)
	}
	return q, nil
}

// LoadSnapshot reads a quote snapshot from a JSON file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading market snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing market snapshot %s: %w", path, err)
	}

	// Keys and embedded tickers normalized once at the boundary.
	normalized := make(map[string]models.Quote, len(snap.Quotes))
	for k, q := range snap.Quotes {
		upper := strings.ToUpper(k)
		q.Underlying = upper
		normalized[upper] = q
	}
	snap.Quotes = normalized

	return &snap, nil
}

// ChainSet holds option-chain snapshots keyed by underlying.
type ChainSet map[string]models.OptionChain

// Chain returns the chain for an underlying, or a per-item NoDataError.
func (c ChainSet) Chain(underlying string) (models.OptionChain, error) {
	chain, ok := c[strings.ToUpper(underlying)]
	if !ok {
		return models.OptionChain{}, errors.NewNoDataError("chain", underlying)
	}
	return chain, nil
}

// LoadChains reads option-chain snapshots from a JSON file containing a list
// of chains. Puts within each chain are sorted by (expiry, strike) so scans
// are deterministic regardless of file order.
func LoadChains(path string) (ChainSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chain snapshot: %w", err)
	}

	var chains []models.OptionChain
	if err := json.Unmarshal(data, &chains); err != nil {
		return nil, fmt.Errorf("parsing chain snapshot %s: %w", path, err)
	}

	set := make(ChainSet, len(chains))
	for _, chain := range chains {
		sort.Slice(chain.Puts, func(i, j int) bool {
			if !chain.Puts[i].Expiry.Equal(chain.Puts[j].Expiry) {
				return chain.Puts[i].Expiry.Before(chain.Puts[j].Expiry)
			}
			return chain.Puts[i].Strike < chain.Puts[j].Strike
		})
		set[strings.ToUpper(chain.Underlying)] = chain
	}

	return set, nil
}
