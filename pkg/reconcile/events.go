package reconcile

import "github.com/matzehuels/thankstars/pkg/discovery"

// EventHandler observes a reconciliation run.
//
// OnStart is called once with the number of repositories (possibly 0).
// OnStarred is called after each repository with a 1-based index.
// OnComplete is called once with the finished summary; it is not called
// when the run fails.
type EventHandler interface {
	OnStart(total int)
	OnStarred(repo discovery.Repository, alreadyStarred bool, index, total int)
	OnComplete(summary Summary)
}

// NopHandler ignores every event. Embed it to implement a subset:
//
//	type progress struct{ reconcile.NopHandler }
//	func (progress) OnStarred(r discovery.Repository, already bool, i, n int) { ... }
type NopHandler struct{}

func (NopHandler) OnStart(int)                                    {}
func (NopHandler) OnStarred(discovery.Repository, bool, int, int) {}
func (NopHandler) OnComplete(Summary)                             {}

// HandlerFuncs builds an EventHandler from optional callbacks.
// Nil fields are ignored.
type HandlerFuncs struct {
	Start    func(total int)
	Starred  func(repo discovery.Repository, alreadyStarred bool, index, total int)
	Complete func(summary Summary)
}

func (h HandlerFuncs) OnStart(total int) {
	if h.Start != nil {
		h.Start(total)
	}
}

func (h HandlerFuncs) OnStarred(repo discovery.Repository, alreadyStarred bool, index, total int) {
	if h.Starred != nil {
		h.Starred(repo, alreadyStarred, index, total)
	}
}

func (h HandlerFuncs) OnComplete(summary Summary) {
	if h.Complete != nil {
		h.Complete(summary)
	}
}

// Multi fans events out to several handlers in order.
func Multi(handlers ...EventHandler) EventHandler {
	return multiHandler(handlers)
}

type multiHandler []EventHandler

func (m multiHandler) OnStart(total int) {
	for _, h := range m {
		h.OnStart(total)
	}
}

func (m multiHandler) OnStarred(repo discovery.Repository, alreadyStarred bool, index, total int) {
	for _, h := range m {
		h.OnStarred(repo, alreadyStarred, index, total)
	}
}

func (m multiHandler) OnComplete(summary Summary) {
	for _, h := range m {
		h.OnComplete(summary)
	}
}
