// Package pkg provides the core libraries for thankstars, which stars the
// GitHub repositories of the dependencies a project uses.
//
// # Overview
//
// The pkg directory is organized by concern:
//
//  1. [discovery] - Frameworks, marker files and the Repository value
//  2. [deps] - Per-framework resolvers that turn manifests into repositories
//  3. [integrations] - Registry and GitHub API clients
//  4. [reconcile] - Starring discovered repositories that are not yet starred
//  5. [pipeline] - Orchestration (discover → select → reconcile → record)
//  6. [cache], [config], [history] - Infrastructure
//
// # Architecture
//
//	Project directory
//	         ↓
//	    [discovery] package (detect frameworks)
//	         ↓
//	    [deps] packages (resolve manifests, query registries)
//	         ↓
//	    [reconcile] package (check and star on GitHub)
//	         ↓
//	    [history] package (record the run)
//
// # Quick Start
//
//	reg := ecosystems.NewRegistry(deps.Options{Cache: cache.NewNullCache()})
//	api := github.NewClient(os.Getenv("GITHUB_TOKEN"))
//	runner := pipeline.NewRunner(reg, api, nil, logger)
//
//	result, err := runner.Run(ctx, pipeline.Options{Root: "."})
//
// [discovery]: github.com/matzehuels/thankstars/pkg/discovery
// [deps]: github.com/matzehuels/thankstars/pkg/deps
// [integrations]: github.com/matzehuels/thankstars/pkg/integrations
// [reconcile]: github.com/matzehuels/thankstars/pkg/reconcile
// [pipeline]: github.com/matzehuels/thankstars/pkg/pipeline
// [cache]: github.com/matzehuels/thankstars/pkg/cache
// [config]: github.com/matzehuels/thankstars/pkg/config
// [history]: github.com/matzehuels/thankstars/pkg/history
package pkg
