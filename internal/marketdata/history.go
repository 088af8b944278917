package marketdata

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// VolPoint is one row of the volatility calibration history: a broad market
// volatility-index level paired with the underlying's implied volatility on
// the same date.
type VolPoint struct {
	Date       string  `csv:"date"`
	IndexLevel float64 `csv:"vix"`
	IV         float64 `csv:"iv"`
}

// PricePoint is one row of a daily closing-price history.
type PricePoint struct {
	Date  string  `csv:"date"`
	Close float64 `csv:"close"`
}

// LoadVolHistory reads a volatility calibration series from a CSV file with
// columns date,vix,iv.
func LoadVolHistory(path string) ([]VolPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading volatility history: %w", err)
	}
	defer f.Close()

	var points []VolPoint
	if err := gocsv.UnmarshalFile(f, &points); err != nil {
		return nil, fmt.Errorf("parsing volatility history %s: %w", path, err)
	}
	return points, nil
}

// LoadPriceHistory reads a daily price series from a CSV file with columns
// date,close.
func LoadPriceHistory(path string) ([]PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading price history: %w", err)
	}
	defer f.Close()

	var points []PricePoint
	if err := gocsv.UnmarshalFile(f, &points); err != nil {
		return nil, fmt.Errorf("parsing price history %s: %w", path, err)
	}
	return points, nil
}

// DailyReturns converts a closing-price series to simple daily returns.
func DailyReturns(points []PricePoint) []float64 {
	if len(points) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		if points[i-1].Close != 0 {
			returns = append(returns, (points[i].Close-points[i-1].Close)/points[i-1].Close)
		}
	}
	return returns
}
