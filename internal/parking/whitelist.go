package parking

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/bozorpay/bozorpay/internal/market"
)

// Whitelist is a process-wide compiled view of the plate exemption rules.
// The compiled snapshot is valid only while its version matches the shared
// counter in the database; rule edits bump the counter instead of pushing
// data, and every process recompiles on its next read.
type Whitelist struct {
	store  Store
	logger *slog.Logger

	mu   sync.Mutex
	snap atomic.Pointer[whitelistSnapshot]
}

type whitelistSnapshot struct {
	version int64
	rules   []compiledRule
}

type compiledRule struct {
	regionID   *int64
	districtID *int64
	marketID   *int64
	re         *regexp.Regexp
}

func NewWhitelist(store Store, logger *slog.Logger) *Whitelist {
	return &Whitelist{store: store, logger: logger}
}

// Exempt reports whether the plate is fee-exempt at the given market.
func (w *Whitelist) Exempt(ctx context.Context, plate string, m *market.Market) (bool, error) {
	rules, err := w.rules(ctx)
	if err != nil {
		return false, err
	}

	for _, r := range rules {
		if !r.re.MatchString(plate) {
			continue
		}

		if r.marketID != nil && *r.marketID != m.ID {
			continue
		}

		if r.districtID != nil && *r.districtID != m.DistrictID {
			continue
		}

		if r.regionID != nil && *r.regionID != m.RegionID {
			continue
		}

		return true, nil
	}

	return false, nil
}

func (w *Whitelist) rules(ctx context.Context) ([]compiledRule, error) {
	version, err := w.store.WhitelistVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("whitelist version: %w", err)
	}

	if snap := w.snap.Load(); snap != nil && snap.version == version {
		return snap.rules, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// Another goroutine may have rebuilt the snapshot while we waited.
	if snap := w.snap.Load(); snap != nil && snap.version == version {
		return snap.rules, nil
	}

	rows, err := w.store.WhitelistRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("whitelist rules: %w", err)
	}

	rules := make([]compiledRule, 0, len(rows))

	for _, row := range rows {
		// Patterns are case-insensitive and anchored to the start of the
		// plate, so a rule for "01" prefixes cannot match mid-string.
		re, err := regexp.Compile(`(?i)^(?:` + row.Pattern + `)`)
		if err != nil {
			w.logger.Warn("skipping invalid whitelist pattern", "id", row.ID, "error", err)
			continue
		}

		rules = append(rules, compiledRule{
			regionID:   row.RegionID,
			districtID: row.DistrictID,
			marketID:   row.MarketID,
			re:         re,
		})
	}

	w.snap.Store(&whitelistSnapshot{version: version, rules: rules})

	return rules, nil
}
