package domain

import "time"

const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Intent is one durable reward to dispatch on-chain: a fixed token
// amount owed to a user's wallet for a qualifying action.
type Intent struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"userId"`
	Wallet       string    `json:"wallet"`
	Amount       int64     `json:"amount"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	AttemptCount int       `json:"attemptCount"`
	TxHash       string    `json:"txHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
