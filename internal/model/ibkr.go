package model

import "time"

// IbkrConfig holds the IBKR flex web service configuration. The flex
// token is stored fernet-encrypted at rest and is never returned by the
// API; Configured reports whether a token is present.
type IbkrConfig struct {
	Configured      bool       `json:"configured"`
	FlexQueryID     int        `json:"flexQueryId"`
	TokenExpiresAt  *time.Time `json:"tokenExpiresAt,omitempty"`
	LastImportDate  *time.Time `json:"lastImportDate,omitempty"`
	AutoSyncEnabled bool       `json:"autoSyncEnabled"`
}

// IbkrSyncResult summarizes one flex report import.
type IbkrSyncResult struct {
	AccountsSeen        int       `json:"accountsSeen"`
	TransactionsCreated int       `json:"transactionsCreated"`
	TransactionsSkipped int       `json:"transactionsSkipped"`
	PositionsUpserted   int       `json:"positionsUpserted"`
	DividendsCreated    int       `json:"dividendsCreated"`
	SyncedAt            time.Time `json:"syncedAt"`
}
