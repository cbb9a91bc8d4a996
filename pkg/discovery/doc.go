// Package discovery turns a project directory into the set of GitHub
// repositories its dependencies live in.
//
// # Overview
//
// Discovery has four parts, leaves first:
//
//  1. [Parse]: recognises the many spellings of a GitHub repository
//     (https URLs, git+ URLs, SSH remotes, github: and owner/repo shorthand)
//     and produces a canonical [Repository].
//  2. [Discoverer]: one per ecosystem (see pkg/deps), returning raw [Ref]
//     strings tagged with the file or registry that produced them.
//  3. [Dispatcher]: runs the discoverers for the selected [Framework] values
//     concurrently and joins their output in the caller's order.
//  4. [Dedup]: collapses the joined list by (owner, name).
//
// # Ordering
//
// Dispatch output is deterministic for a fixed input: results are
// concatenated in the order frameworks were passed, never in completion
// order, and when several discoverers fail the error of the earliest
// framework in that order is returned.
//
// # Identity
//
// Repository identity is the case-sensitive (owner, name) pair.
// "Octo/Repo" and "octo/repo" are distinct repositories as far as [Dedup]
// is concerned even though GitHub treats them as one.
package discovery
