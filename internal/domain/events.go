package domain

import (
	"context"
	"time"
)

// Event is a domain fact the core emits after a successful state change.
// The core never performs I/O for events itself; an EventSink decides what
// to do with them (publish to Kafka, log, count).
type Event interface {
	// EventKind is the stable event name, e.g. "policy_created".
	EventKind() string
	// EventKey is the ID of the entity the event concerns, used as a
	// partition key by publishers.
	EventKey() string
}

// EventSink receives domain events. Implementations must tolerate concurrent
// calls. Sink failures must not fail the originating operation.
type EventSink interface {
	Publish(ctx context.Context, e Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) {}

type PolicyCreated struct {
	Policy   Policy    `json:"policy"`
	PaidOver int64     `json:"paid_over"` // overpayment recorded as refundable
	At       time.Time `json:"at"`
}

func (e PolicyCreated) EventKind() string { return "policy_created" }
func (e PolicyCreated) EventKey() string  { return e.Policy.ID }

// PolicyCancellation is named as a noun so it does not collide with the
// PolicyCancelled status constant.
type PolicyCancellation struct {
	PolicyID string    `json:"policy_id"`
	Holder   Address   `json:"holder"`
	Refund   int64     `json:"refund"`
	Fee      int64     `json:"fee"`
	At       time.Time `json:"at"`
}

func (e PolicyCancellation) EventKind() string { return "policy_cancelled" }
func (e PolicyCancellation) EventKey() string  { return e.PolicyID }

type PolicyExpiration struct {
	PolicyID string    `json:"policy_id"`
	Holder   Address   `json:"holder"`
	At       time.Time `json:"at"`
}

func (e PolicyExpiration) EventKind() string { return "policy_expired" }
func (e PolicyExpiration) EventKey() string  { return e.PolicyID }

type ClaimInitiated struct {
	ClaimID         string    `json:"claim_id"`
	PolicyID        string    `json:"policy_id"`
	OracleRequestID string    `json:"oracle_request_id"`
	At              time.Time `json:"at"`
}

func (e ClaimInitiated) EventKind() string { return "claim_initiated" }
func (e ClaimInitiated) EventKey() string  { return e.ClaimID }

type ClaimProcessed struct {
	ClaimID     string    `json:"claim_id"`
	PolicyID    string    `json:"policy_id"`
	TriggerMet  bool      `json:"trigger_met"`
	ActualValue int64     `json:"actual_value"`
	Payout      int64     `json:"payout"`
	At          time.Time `json:"at"`
}

func (e ClaimProcessed) EventKind() string { return "claim_processed" }
func (e ClaimProcessed) EventKey() string  { return e.ClaimID }

type OracleRequested struct {
	RequestID  string    `json:"request_id"`
	LocationID string    `json:"location_id"`
	At         time.Time `json:"at"`
}

func (e OracleRequested) EventKind() string { return "oracle_requested" }
func (e OracleRequested) EventKey() string  { return e.RequestID }

type OracleFulfilled struct {
	RequestID  string         `json:"request_id"`
	LocationID string         `json:"location_id"`
	Reading    WeatherReading `json:"reading"`
	Submitter  Address        `json:"submitter"`
	At         time.Time      `json:"at"`
}

func (e OracleFulfilled) EventKind() string { return "oracle_fulfilled" }
func (e OracleFulfilled) EventKey() string  { return e.RequestID }

type TreasuryFunded struct {
	From   Address   `json:"from"`
	Amount int64     `json:"amount"`
	At     time.Time `json:"at"`
}

func (e TreasuryFunded) EventKind() string { return "treasury_funded" }
func (e TreasuryFunded) EventKey() string  { return string(e.From) }

type TreasuryWithdrawal struct {
	To     Address   `json:"to"`
	Amount int64     `json:"amount"`
	At     time.Time `json:"at"`
}

func (e TreasuryWithdrawal) EventKind() string { return "treasury_withdrawal" }
func (e TreasuryWithdrawal) EventKey() string  { return string(e.To) }
