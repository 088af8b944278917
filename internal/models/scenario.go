package models

// Winner tags for a scenario comparison.
const (
	WinnerSQQQ = "sqqq"
	WinnerPuts = "puts"
	WinnerTie  = "tie"
)

// ScenarioResult pairs one hypothetical market drop with the simulated
// outcome of each hedge instrument. Ephemeral; produced and discarded
// within one comparison run.
type ScenarioResult struct {
	DropPercent float64 `json:"drop_percent"` // e.g. -10 for a 10% drop
	Days        int     `json:"days"`

	FundPL        float64 `json:"fund_pl"`
	FundReturnPct float64 `json:"fund_return_percent"`
	FundDragPct   float64 `json:"fund_drag_percent"` // actual minus naive -leverage*drop

	PutPL         float64 `json:"put_pl"`
	PutReturnPct  float64 `json:"put_return_percent"`
	StressedIV    float64 `json:"stressed_iv"`

	Winner string `json:"winner,omitempty"`

	// Invalid marks a malformed scenario input. The row is reported but
	// carries no numbers; other scenarios in the batch are unaffected.
	Invalid bool   `json:"invalid,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// ComparisonReport is a full comparison run: the scenario table, the
// per-instrument breakeven drops, provenance of the models used, and the
// mandatory framing statements.
type ComparisonReport struct {
	Results           []ScenarioResult `json:"results"`
	FundBreakevenPct  float64          `json:"fund_breakeven_percent"`
	PutBreakevenPct   float64          `json:"put_breakeven_percent"`
	StressModel       string           `json:"stress_model_version"`
	PathStrategy      string           `json:"path_strategy"`
	DecayNote         string           `json:"decay_note"`
	Disclaimer        string           `json:"disclaimer"`
}
