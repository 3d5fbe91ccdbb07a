package rates

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

// Stub is an in-memory currency collaborator with a fixed USD-based table.
type Stub struct {
	mu    sync.RWMutex
	table map[string]decimal.Decimal
}

// NewStub builds a stub quoting the dev currency table.
func NewStub() *Stub {
	return &Stub{
		table: map[string]decimal.Decimal{
			"USD": decimal.RequireFromString("1.0000"),
			"EUR": decimal.RequireFromString("0.9150"),
			"GBP": decimal.RequireFromString("0.7850"),
			"JPY": decimal.RequireFromString("147.2500"),
			"CAD": decimal.RequireFromString("1.3620"),
		},
	}
}

// SetRate inserts or replaces a USD-based quote.
func (s *Stub) SetRate(currency string, rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[currency] = rate
}

// GetRate implements Client. Cross rates are derived through USD.
func (s *Stub) GetRate(ctx context.Context, from, to string) (*Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fromRate, ok := s.table[from]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %s", from))
	}
	toRate, ok := s.table[to]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %s", to))
	}
	return &Rate{
		From:      from,
		To:        to,
		Rate:      toRate.DivRound(fromRate, 4),
		Timestamp: time.Now().UTC(),
	}, nil
}

// GetSupportedCurrencies implements Client.
func (s *Stub) GetSupportedCurrencies(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	currencies := make([]string, 0, len(s.table))
	for code := range s.table {
		currencies = append(currencies, code)
	}
	sort.Strings(currencies)
	return currencies, nil
}
