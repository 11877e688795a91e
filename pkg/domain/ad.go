package domain

import (
	"crypto/md5" //nolint:gosec // not used for security, stable ad identity only
	"encoding/hex"
	"time"
)

// Ad represents a persisted, deduplicated marketplace listing
type Ad struct {
	ID          string
	URL         string
	Title       string
	Price       string
	FirstSeen   time.Time
	LastChecked time.Time
}

// Candidate represents an extracted, not-yet-filtered listing from a page fetch
type Candidate struct {
	Title string
	Price string
	URL   string // canonical listing URL, query string stripped
}

// AdID derives the stable identity of a listing from its canonical URL.
// Two candidates with the same normalized URL are the same ad regardless
// of title or price drift.
func AdID(url string) string {
	sum := md5.Sum([]byte(url)) //nolint:gosec // content addressing, not crypto
	return hex.EncodeToString(sum[:])
}

// UpsertResult reports what a store upsert did with a candidate
type UpsertResult int

// upsert outcomes
const (
	Inserted UpsertResult = iota
	Updated
)

// String returns a human-readable form for logs
func (r UpsertResult) String() string {
	if r == Inserted {
		return "inserted"
	}
	return "updated"
}
