package models

import (
	"time"
)

// Transaction is one point transfer from a sender to one or more
// recipients. Immutable once written; the transactions table is an
// append-only log owned by the ledger.
type Transaction struct {
	TransactionID string    `db:"transaction_id"`
	FromUser      string    `db:"from_user"`
	ToUsers       []string  `db:"to_users"`
	Points        int       `db:"points"` // per recipient
	Timestamp     time.Time `db:"timestamp"`
	Message       string    `db:"message"`
}

// Direction indicates which side of a transaction a history row shows
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// TransactionView is one history row: a transaction expanded per
// counterparty, with the counterparty's display name resolved
type TransactionView struct {
	Direction        Direction
	CounterpartyID   string
	CounterpartyName string
	Points           int
	Timestamp        time.Time
	Message          string
}

// LedgerResult reports the outcome of an AddPoints call. On failure it
// still carries the last-observed DailyPointsGiven so callers can show
// the remaining quota.
type LedgerResult struct {
	DailyPointsGiven int
	TransactionID    string
}
