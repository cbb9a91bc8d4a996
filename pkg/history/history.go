// Package history records what each thankstars run did.
//
// A [Record] is written after every reconciliation (dry runs included) to a
// [Store]: JSON files in the configuration directory by default, or a
// MongoDB collection when a connection URI is configured.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/thankstars/pkg/reconcile"
)

// DefaultLimit is the number of records List returns when limit <= 0.
const DefaultLimit = 20

// Entry is one repository handled during a run.
type Entry struct {
	Owner          string `json:"owner" bson:"owner"`
	Name           string `json:"name" bson:"name"`
	URL            string `json:"url" bson:"url"`
	Via            string `json:"via,omitempty" bson:"via,omitempty"`
	AlreadyStarred bool   `json:"already_starred" bson:"already_starred"`
}

// Record is the outcome of one run.
type Record struct {
	ID         string    `json:"id" bson:"_id"`
	Root       string    `json:"root" bson:"root"`
	DryRun     bool      `json:"dry_run" bson:"dry_run"`
	Frameworks []string  `json:"frameworks" bson:"frameworks"`
	StartedAt  time.Time `json:"started_at" bson:"started_at"`
	FinishedAt time.Time `json:"finished_at" bson:"finished_at"`
	Entries    []Entry   `json:"entries" bson:"entries"`
}

// NewRecord starts a record for a run over root.
func NewRecord(root string, dryRun bool) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Root:      root,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}
}

// Finish fills the entries from a reconciliation summary and stamps the
// finish time.
func (r *Record) Finish(summary reconcile.Summary) {
	r.Entries = make([]Entry, 0, len(summary.Starred))
	for _, s := range summary.Starred {
		r.Entries = append(r.Entries, Entry{
			Owner:          s.Repository.Owner,
			Name:           s.Repository.Name,
			URL:            s.Repository.URL,
			Via:            s.Repository.Via,
			AlreadyStarred: s.AlreadyStarred,
		})
	}
	r.FinishedAt = time.Now().UTC()
}

// Newly returns the number of repositories starred (or, in a dry run,
// that would have been starred).
func (r *Record) Newly() int {
	n := 0
	for _, e := range r.Entries {
		if !e.AlreadyStarred {
			n++
		}
	}
	return n
}

// Already returns the number of repositories that were starred before the run.
func (r *Record) Already() int {
	return len(r.Entries) - r.Newly()
}

// Store persists run records.
type Store interface {
	// Save writes r, replacing any record with the same ID.
	Save(ctx context.Context, r *Record) error
	// List returns up to limit records, most recent first.
	List(ctx context.Context, limit int) ([]*Record, error)
	Close() error
}

// Options selects and configures a Store.
type Options struct {
	Dir      string // FileStore directory
	MongoURI string // when set, records go to MongoDB instead
	Database string // MongoDB database (default "thankstars")
}

// Open returns a MongoStore when opts.MongoURI is set, otherwise a FileStore.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.MongoURI != "" {
		return NewMongoStore(ctx, opts.MongoURI, opts.Database)
	}
	return NewFileStore(opts.Dir)
}
