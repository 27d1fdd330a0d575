// Package failures defines the two error families surfaced by migrations.
//
// RepositoryError covers runtime failures while talking to git or an external
// hook. ValidationError covers configuration defects detected before any git
// I/O happens. Neither is ever converted into the other.
package failures
