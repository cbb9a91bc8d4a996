package reconcile

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/observability"
)

// StarAPI is the part of GitHub the engine needs.
//
// Star must treat "already starred" responses as success.
type StarAPI interface {
	ViewerHasStarred(ctx context.Context, owner, name string) (bool, error)
	Star(ctx context.Context, owner, name string) error
}

// RepoError attributes a remote failure to the repository being processed.
type RepoError struct {
	Op         string // "query" or "star"
	Repository discovery.Repository
	Err        error
}

func (e *RepoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Repository.Key(), e.Err)
}

func (e *RepoError) Unwrap() error { return e.Err }

// Engine reconciles starred state one repository at a time.
type Engine struct {
	API     StarAPI
	DryRun  bool
	Handler EventHandler
	Logger  *log.Logger
}

// NewEngine creates an engine. A nil handler ignores events and a nil
// logger uses log.Default().
func NewEngine(api StarAPI, dryRun bool, handler EventHandler, logger *log.Logger) *Engine {
	return &Engine{API: api, DryRun: dryRun, Handler: handler, Logger: logger}
}

// Reconcile stars every repository in repos that the viewer has not starred
// yet, in order. In dry-run mode Star is never called but the starred state
// is still queried, so the summary distinguishes "already starred" from
// "would star".
//
// The first query or star failure aborts the run with a *RepoError; no
// summary is returned and OnComplete is not called. ctx is checked before
// each repository.
func (e *Engine) Reconcile(ctx context.Context, repos []discovery.Repository) (Summary, error) {
	handler := e.Handler
	if handler == nil {
		handler = NopHandler{}
	}
	logger := e.Logger
	if logger == nil {
		logger = log.Default()
	}
	hooks := observability.Star()

	total := len(repos)
	handler.OnStart(total)

	starred := make([]StarredRepository, 0, total)
	for i, repo := range repos {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}

		already, err := e.API.ViewerHasStarred(ctx, repo.Owner, repo.Name)
		hooks.OnQuery(ctx, repo.Owner, repo.Name, already, err)
		if err != nil {
			return Summary{}, &RepoError{Op: "query", Repository: repo, Err: err}
		}

		switch {
		case already:
			logger.Debug("already starred", "repo", repo.Key())
		case e.DryRun:
			hooks.OnStar(ctx, repo.Owner, repo.Name, true, nil)
			logger.Debug("would star", "repo", repo.Key())
		default:
			err := e.API.Star(ctx, repo.Owner, repo.Name)
			hooks.OnStar(ctx, repo.Owner, repo.Name, false, err)
			if err != nil {
				return Summary{}, &RepoError{Op: "star", Repository: repo, Err: err}
			}
			logger.Debug("starred", "repo", repo.Key())
		}

		starred = append(starred, StarredRepository{Repository: repo, AlreadyStarred: already})
		handler.OnStarred(repo, already, i+1, total)
	}

	summary := Summary{Starred: starred}
	handler.OnComplete(summary)
	return summary, nil
}

// DryRunAPI wraps api so that Star succeeds without contacting GitHub.
// Queries pass through.
func DryRunAPI(api StarAPI) StarAPI {
	return dryRunAPI{api}
}

type dryRunAPI struct{ StarAPI }

func (dryRunAPI) Star(context.Context, string, string) error { return nil }
