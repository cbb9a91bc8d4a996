package reconcile

import "github.com/matzehuels/thankstars/pkg/discovery"

// StarredRepository is the outcome for one repository.
type StarredRepository struct {
	Repository     discovery.Repository `json:"repository"`
	AlreadyStarred bool                 `json:"already_starred"`
}

// Summary lists the outcome of every repository processed, in processing
// order.
type Summary struct {
	Starred []StarredRepository `json:"starred"`
}

// Len returns the number of repositories processed.
func (s Summary) Len() int {
	return len(s.Starred)
}

// Already returns how many repositories were starred before the run.
func (s Summary) Already() int {
	n := 0
	for _, r := range s.Starred {
		if r.AlreadyStarred {
			n++
		}
	}
	return n
}

// Newly returns how many repositories were starred (or would be, in a dry
// run) by this run.
func (s Summary) Newly() int {
	return len(s.Starred) - s.Already()
}
