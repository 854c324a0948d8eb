// Package oracle brokers weather attestation requests: it tracks outstanding
// requests, enforces at-most-once fulfillment by an allow-listed provider,
// and feeds verified readings into the per-location history.
package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldsure/fieldsure/internal/domain"
	"github.com/fieldsure/fieldsure/internal/readings"
)

// Broker maps request IDs to fulfillment state. A request stays pending until
// a provider fulfills it; there is no expiry.
type Broker struct {
	mu       sync.RWMutex
	requests map[string]domain.OracleRequest
	allowed  map[domain.Address]struct{}

	owner   domain.Address
	history *readings.History
	sink    domain.EventSink
}

// NewBroker creates a broker administered by owner. Verified readings are
// appended to history; events go to sink.
func NewBroker(owner domain.Address, history *readings.History, sink domain.EventSink) *Broker {
	if sink == nil {
		sink = domain.NopSink{}
	}
	return &Broker{
		requests: make(map[string]domain.OracleRequest),
		allowed:  make(map[domain.Address]struct{}),
		owner:    owner,
		history:  history,
		sink:     sink,
	}
}

// RequestReading opens a new attestation request for a location. Always
// succeeds and returns the fresh request ID.
func (b *Broker) RequestReading(ctx context.Context, loc domain.Location, at time.Time) string {
	req := domain.OracleRequest{
		ID:         "req-" + uuid.NewString(),
		Location:   loc,
		LocationID: loc.ID(),
		Timestamp:  at,
	}

	b.mu.Lock()
	b.requests[req.ID] = req
	b.mu.Unlock()

	b.sink.Publish(ctx, domain.OracleRequested{
		RequestID:  req.ID,
		LocationID: req.LocationID,
		At:         at,
	})
	return req.ID
}

// Fulfill attests a pending request with scaled reading values. The reading
// is marked verified, becomes the location's latest, and is folded into the
// running averages. A verified request is never mutated again.
func (b *Broker) Fulfill(ctx context.Context, requestID string, temperature, rainfall, humidity, windSpeed int64, submitter domain.Address) error {
	b.mu.Lock()

	if _, ok := b.allowed[submitter]; !ok {
		b.mu.Unlock()
		return domain.ErrNotAuthorized
	}
	req, ok := b.requests[requestID]
	if !ok {
		b.mu.Unlock()
		return domain.ErrRequestNotFound
	}
	if req.Verified {
		b.mu.Unlock()
		return domain.ErrAlreadyFulfilled
	}

	req.Reading = domain.WeatherReading{
		Timestamp:   req.Timestamp,
		Temperature: temperature,
		Rainfall:    rainfall,
		Humidity:    humidity,
		WindSpeed:   windSpeed,
		SourceID:    string(submitter),
		Verified:    true,
	}
	req.Verified = true
	b.requests[requestID] = req
	b.mu.Unlock()

	b.history.Append(req.LocationID, req.Reading)

	b.sink.Publish(ctx, domain.OracleFulfilled{
		RequestID:  req.ID,
		LocationID: req.LocationID,
		Reading:    req.Reading,
		Submitter:  submitter,
		At:         req.Reading.Timestamp,
	})
	return nil
}

// IsAvailable reports whether a request exists and whether it has been
// fulfilled.
func (b *Broker) IsAvailable(requestID string) (exists, verified bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	req, ok := b.requests[requestID]
	return ok, ok && req.Verified
}

// Get returns a request by ID.
func (b *Broker) Get(requestID string) (domain.OracleRequest, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	req, ok := b.requests[requestID]
	if !ok {
		return domain.OracleRequest{}, domain.ErrRequestNotFound
	}
	return req, nil
}

// Pending returns all unfulfilled requests, for fulfiller polling.
func (b *Broker) Pending() []domain.OracleRequest {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []domain.OracleRequest
	for _, req := range b.requests {
		if !req.Verified {
			out = append(out, req)
		}
	}
	return out
}

// Authorize adds a provider to the allow-list. Owner only; idempotent.
func (b *Broker) Authorize(caller, provider domain.Address) error {
	if caller != b.owner {
		return domain.ErrNotOwner
	}
	b.mu.Lock()
	b.allowed[provider] = struct{}{}
	b.mu.Unlock()
	return nil
}

// Revoke removes a provider from the allow-list. Owner only; idempotent.
func (b *Broker) Revoke(caller, provider domain.Address) error {
	if caller != b.owner {
		return domain.ErrNotOwner
	}
	b.mu.Lock()
	delete(b.allowed, provider)
	b.mu.Unlock()
	return nil
}

// IsAuthorized reports whether a provider may fulfill requests.
func (b *Broker) IsAuthorized(provider domain.Address) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.allowed[provider]
	return ok
}
