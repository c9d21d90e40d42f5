package domain

import "time"

type Account struct {
	Username     string
	Password     string
	Email        string
	Balance      int64
	Transactions []string
	CreatedAt    time.Time
}
