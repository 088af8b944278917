package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func priceArgs(extra ...string) []string {
	args := []string{
		"price", "--json",
		"--underlying", "QQQ",
		"--strike", "450",
		"--expiry", "2026-06-19",
		"--spot", "500",
		"--iv", "0.25",
		"--as-of", "2026-02-02",
	}
	return append(args, extra...)
}

func TestPriceRateDefaultsFromConfig(t *testing.T) {
	out := runCLI(t, priceArgs()...)
	assert.Contains(t, out, `"risk_free": 0.03`)
}

func TestPriceExplicitZeroRate(t *testing.T) {
	// --rate 0 is a deliberate input, not an unset flag.
	out := runCLI(t, priceArgs("--rate", "0")...)
	assert.Contains(t, out, `"risk_free": 0,`)
}

func TestPriceExplicitRate(t *testing.T) {
	out := runCLI(t, priceArgs("--rate", "0.05")...)
	assert.Contains(t, out, `"risk_free": 0.05`)
}
