package domain

import "time"

// SimpleFINConfig is the singleton aggregator configuration: the durable
// access URL obtained by claiming a setup token, plus the last successful
// sync time. At most one row exists per installation.
type SimpleFINConfig struct {
	ID         string
	AccessURL  string
	LastSynced *time.Time
}
