package bigquery

import (
	"homeledger/internal/categorize"
	"homeledger/internal/sync"
)

// The services declare the storage they consume; the Store must satisfy all
// of them.
var (
	_ sync.Store       = (*Store)(nil)
	_ categorize.Store = (*Store)(nil)
)
