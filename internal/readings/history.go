// Package readings keeps the per-location weather reading history the oracle
// broker appends to: an append-only log, a latest-reading pointer, streaming
// running averages, and historical risk scoring over the recent window.
package readings

import (
	"sync"

	"github.com/fieldsure/fieldsure/internal/domain"
)

// riskWindow caps how many recent readings the risk score samples.
const riskWindow = 100

// neutralRiskScore is returned when a location has no history at all.
const neutralRiskScore = 50

// History is a concurrency-safe in-memory reading store keyed by location ID.
type History struct {
	mu       sync.RWMutex
	byLoc    map[string][]domain.WeatherReading
	latest   map[string]domain.WeatherReading
	averages map[string]domain.RunningAverages
}

// NewHistory creates an empty reading history.
func NewHistory() *History {
	return &History{
		byLoc:    make(map[string][]domain.WeatherReading),
		latest:   make(map[string]domain.WeatherReading),
		averages: make(map[string]domain.RunningAverages),
	}
}

// Append records a verified reading for a location, advances the
// latest-reading pointer, and folds the reading into the running averages.
func (h *History) Append(locationID string, r domain.WeatherReading) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.byLoc[locationID] = append(h.byLoc[locationID], r)
	h.latest[locationID] = r
	h.averages[locationID] = h.averages[locationID].Accumulate(r, r.Timestamp)
}

// Latest returns the most recent reading for a location.
func (h *History) Latest(locationID string) (domain.WeatherReading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.latest[locationID]
	return r, ok
}

// Averages returns the running averages for a location. The zero value is
// returned for unknown locations (Count reports how many readings exist).
func (h *History) Averages(locationID string) domain.RunningAverages {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.averages[locationID]
}

// Count returns how many readings a location has accumulated.
func (h *History) Count(locationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.byLoc[locationID])
}

// Recent returns up to n of the newest readings for a location, oldest first.
func (h *History) Recent(locationID string, n int) []domain.WeatherReading {
	h.mu.RLock()
	defer h.mu.RUnlock()

	all := h.byLoc[locationID]
	if n <= 0 || n > len(all) {
		n = len(all)
	}
	out := make([]domain.WeatherReading, n)
	copy(out, all[len(all)-n:])
	return out
}

// RiskScore estimates how often a trigger rule would have fired over the
// recent history, as an integer percentage in [0, 100]. It samples the last
// min(100, historyLength) readings and counts the ones that cross the
// threshold. A location with no history scores a neutral 50.
func (h *History) RiskScore(locationID string, t domain.TriggerType, threshold int64) int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	all := h.byLoc[locationID]
	if len(all) == 0 {
		return neutralRiskScore
	}

	sample := all
	if len(sample) > riskWindow {
		sample = sample[len(sample)-riskWindow:]
	}

	var triggered int64
	for _, r := range sample {
		if domain.EvaluateTrigger(t, threshold, r) {
			triggered++
		}
	}
	return triggered * 100 / int64(len(sample))
}
