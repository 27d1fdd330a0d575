package transform

import (
	"context"

	"github.com/temirov/gitmigrate/internal/console"
)

// Work is the state a transformation operates on.
type Work struct {
	CheckoutDirectory string
	Message           string
	Console           console.Console
}

// Transformation mutates the working tree.
type Transformation interface {
	Transform(executionContext context.Context, work Work) error
	// Reverse returns the transformation that undoes this one.
	Reverse() Transformation
	// Describe is a short human readable summary used in progress messages.
	Describe() string
}
