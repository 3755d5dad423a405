package models

import "time"

// StoreContext holds the aggregate shape of one store's synced data.
// It is read fresh for every question and used only to ground the prompt;
// it is never mutated or cached.
type StoreContext struct {
	StoreID       string
	Currency      string
	OrderCount    int64
	ProductCount  int64
	CustomerCount int64
	CategoryCount int64
	FirstOrderAt  *time.Time
	LastOrderAt   *time.Time
}
