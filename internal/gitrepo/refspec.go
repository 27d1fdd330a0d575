package gitrepo

import (
	"strings"

	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	refSpecForcePrefixConstant     = "+"
	refSpecSeparatorConstant       = ":"
	defaultRefSpecConstant         = "+refs/heads/*:refs/heads/*"
	invalidRefSpecTemplateConstant = "Invalid refspec '%s'"
	invalidRefSpecReasonConstant   = "Invalid refspec '%s': %v"
)

// RefSpec maps source references to destination references. Matching and
// mapping delegate to go-git's refspec type; transport stays with the git binary.
type RefSpec struct {
	Source      string
	Destination string
	Force       bool
}

// DefaultRefSpec mirrors every branch under the same name.
func DefaultRefSpec() RefSpec {
	refSpec, _ := ParseRefSpec(defaultRefSpecConstant)
	return refSpec
}

// ParseRefSpec parses "[+]source[:destination]". A missing destination maps the source onto itself.
func ParseRefSpec(value string) (RefSpec, error) {
	trimmedValue := strings.TrimSpace(value)
	body := strings.TrimPrefix(trimmedValue, refSpecForcePrefixConstant)
	if len(body) == 0 || strings.HasPrefix(body, refSpecSeparatorConstant) {
		return RefSpec{}, failures.NewValidationError(invalidRefSpecTemplateConstant, value)
	}
	if !strings.Contains(body, refSpecSeparatorConstant) {
		trimmedValue = trimmedValue + refSpecSeparatorConstant + body
	}

	gitSpec := gitconfig.RefSpec(trimmedValue)
	if validationError := gitSpec.Validate(); validationError != nil {
		return RefSpec{}, failures.NewValidationError(invalidRefSpecReasonConstant, value, validationError)
	}

	source := gitSpec.Src()
	_, destination, _ := strings.Cut(strings.TrimPrefix(trimmedValue, refSpecForcePrefixConstant), refSpecSeparatorConstant)
	return RefSpec{Source: source, Destination: destination, Force: gitSpec.IsForceUpdate()}, nil
}

// ParseRefSpecs parses every value, or returns the default refspec when none are given.
func ParseRefSpecs(values []string) ([]RefSpec, error) {
	if len(values) == 0 {
		return []RefSpec{DefaultRefSpec()}, nil
	}
	refSpecs := make([]RefSpec, 0, len(values))
	for _, value := range values {
		refSpec, parseError := ParseRefSpec(value)
		if parseError != nil {
			return nil, parseError
		}
		refSpecs = append(refSpecs, refSpec)
	}
	return refSpecs, nil
}

// String renders the refspec in git syntax.
func (refSpec RefSpec) String() string {
	return refSpec.gitSpec().String()
}

// WithForce returns a copy with the force flag replaced.
func (refSpec RefSpec) WithForce(force bool) RefSpec {
	refSpec.Force = force
	return refSpec
}

// SourceToSource maps the source side onto itself, keeping the force flag.
func (refSpec RefSpec) SourceToSource() RefSpec {
	return RefSpec{Source: refSpec.Source, Destination: refSpec.Source, Force: refSpec.Force}
}

// MatchesSource reports whether the reference is selected by the source side.
func (refSpec RefSpec) MatchesSource(reference string) bool {
	return refSpec.gitSpec().Match(plumbing.ReferenceName(reference))
}

// MatchesDestination reports whether the reference falls under the destination side.
func (refSpec RefSpec) MatchesDestination(reference string) bool {
	destinationSpec := RefSpec{Source: refSpec.Destination, Destination: refSpec.Destination}
	return destinationSpec.gitSpec().Match(plumbing.ReferenceName(reference))
}

// ConvertSource maps a source reference to its destination name.
func (refSpec RefSpec) ConvertSource(reference string) (string, bool) {
	gitSpec := refSpec.gitSpec()
	referenceName := plumbing.ReferenceName(reference)
	if !gitSpec.Match(referenceName) {
		return "", false
	}
	return gitSpec.Dst(referenceName).String(), true
}

func (refSpec RefSpec) gitSpec() gitconfig.RefSpec {
	var builder strings.Builder
	if refSpec.Force {
		builder.WriteString(refSpecForcePrefixConstant)
	}
	builder.WriteString(refSpec.Source)
	builder.WriteString(refSpecSeparatorConstant)
	builder.WriteString(refSpec.Destination)
	return gitconfig.RefSpec(builder.String())
}
