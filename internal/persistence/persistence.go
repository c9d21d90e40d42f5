package persistence

import (
	"context"
	"time"
)

// Store is the durability boundary for the ledger. Load is called once at
// startup; Save after every successful mutation and on shutdown.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

type Meta struct {
	Storage   string    `json:"storage"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

type PersistAccount struct {
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	Email        string    `json:"email"`
	Balance      int64     `json:"balance"`
	Transactions []string  `json:"transactions"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot is the full ledger state. Accounts keep insertion order so a
// restore reproduces the admin listing order. The logged-in username is part
// of the persisted state, matching the authentication model.
type Snapshot struct {
	Meta         Meta             `json:"_meta"`
	Accounts     []PersistAccount `json:"accounts"`
	LoggedInUser string           `json:"logged_in_user,omitempty"`
}

const SnapshotVersion = 1
