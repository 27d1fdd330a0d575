// Package origin reads history and file trees from git repositories.
//
// GitOrigin resolves reference expressions against a remote through the
// shared repository cache. Reader checks revisions out into a working
// directory, optionally running a checkout hook, and walks first-parent
// history either oldest first (Changes) or newest first (VisitChanges).
package origin
