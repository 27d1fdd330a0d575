// Package transform mutates a checked-out working tree.
//
// A Pipeline applies an ordered list of transformations and carries an
// explicitly declared reversal list; reversing a pipeline swaps the two.
package transform
