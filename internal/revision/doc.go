// Package revision models pointers into origin history and the changes they describe.
package revision
