package model

import "time"

// Account represents a brokerage account synced from an external broker.
type Account struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"accountNumber"`
	Broker        string    `json:"broker"`
	Name          string    `json:"name"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"createdAt"`
}
