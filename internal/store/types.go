package store

import "time"

// Config is the persisted configuration document. Known settings are named
// fields; Extra keeps round-tripping keys this build does not know about.
type Config struct {
	PrivateKey  string            `json:"privateKey,omitempty"`
	LastRecapAt *time.Time        `json:"lastRecapAt,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Shareholder is one entry of a token's fee split.
type Shareholder struct {
	Address  string `json:"address"`
	ShareBps uint16 `json:"shareBps"`
	Label    string `json:"label,omitempty"`
}

// TokenRecord tracks one launched token. Mint is immutable once created;
// PoolAddress and Shareholders are the only fields mutated after launch.
type TokenRecord struct {
	Name                 string        `json:"name"`
	Symbol               string        `json:"symbol"`
	Mint                 string        `json:"mint"`
	CreatedAt            time.Time     `json:"createdAt"`
	PoolAddress          string        `json:"poolAddress,omitempty"`
	FeeSharingConfigured bool          `json:"feeSharingConfigured"`
	Shareholders         []Shareholder `json:"shareholders"`
}

// History is the append-only token ledger document.
type History struct {
	Tokens []TokenRecord `json:"tokens"`
}
