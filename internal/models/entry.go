package models

import "time"

// Entry is a cached playlist fragment for one broadcast link.
type Entry struct {
	Link      string    `json:"link"`
	Fragment  string    `json:"fragment"`
	FetchedAt time.Time `json:"fetched_at"`
}
