// Package gitrepo drives the git binary on behalf of origins and mirrors.
//
// Repository wraps a single git directory and exposes the operations the
// migration core needs: fetch, push, reference resolution, first-parent log
// traversal, checkout into an arbitrary work tree and reference listing.
// RepositoryCache keeps one bare repository per remote URL under a storage
// path and serializes access to each of them with an exclusive file lock.
package gitrepo
