package mirror

import (
	"strings"

	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/gitrepo"
)

const (
	missingFieldTemplateConstant = "git.mirror requires a non-empty '%s' field"
	nameFieldConstant            = "name"
	originFieldConstant          = "origin"
	destinationFieldConstant     = "destination"
)

// Configuration describes a single mirror. It is immutable once built.
type Configuration struct {
	name           string
	originURL      string
	destinationURL string
	refSpecs       []gitrepo.RefSpec
	prune          bool
	forcePush      bool
}

// NewConfiguration validates the fields. No refspecs means every branch.
func NewConfiguration(name string, originURL string, destinationURL string, refSpecs []string, prune bool, forcePush bool) (Configuration, error) {
	requiredFields := []struct {
		fieldName  string
		fieldValue string
	}{
		{fieldName: nameFieldConstant, fieldValue: name},
		{fieldName: originFieldConstant, fieldValue: originURL},
		{fieldName: destinationFieldConstant, fieldValue: destinationURL},
	}
	for _, requiredField := range requiredFields {
		if len(strings.TrimSpace(requiredField.fieldValue)) == 0 {
			return Configuration{}, failures.NewValidationError(missingFieldTemplateConstant, requiredField.fieldName)
		}
	}

	parsedRefSpecs, parseError := gitrepo.ParseRefSpecs(refSpecs)
	if parseError != nil {
		return Configuration{}, parseError
	}

	return Configuration{
		name:           name,
		originURL:      originURL,
		destinationURL: destinationURL,
		refSpecs:       parsedRefSpecs,
		prune:          prune,
		forcePush:      forcePush,
	}, nil
}

// Name returns the migration name.
func (configuration Configuration) Name() string {
	return configuration.name
}

// OriginURL returns the repository references are read from.
func (configuration Configuration) OriginURL() string {
	return configuration.originURL
}

// DestinationURL returns the repository references are written to.
func (configuration Configuration) DestinationURL() string {
	return configuration.destinationURL
}

// RefSpecs returns the refspecs in declaration order.
func (configuration Configuration) RefSpecs() []gitrepo.RefSpec {
	return append([]gitrepo.RefSpec(nil), configuration.refSpecs...)
}

// Prune reports whether stale destination references are deleted.
func (configuration Configuration) Prune() bool {
	return configuration.prune
}

// ForcePush reports whether non-fast-forward updates are allowed.
func (configuration Configuration) ForcePush() bool {
	return configuration.forcePush
}
