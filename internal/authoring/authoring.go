package authoring

import (
	"fmt"

	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	emptyWhitelistMessageConstant           = "'whitelisted' function requires a non-empty 'whitelist' field. For default mapping, use 'overwrite(...)' mode instead."
	duplicateWhitelistEntryTemplateConstant = "Duplicated whitelist entry '%s'"
	unknownModeTemplateConstant             = "Mode '%s' not implemented."
	authoringDescriptionTemplateConstant    = "Authoring{defaultAuthor=%s, mode=%s, whitelist=%v}"
)

// MappingMode selects how origin authors are carried to the destination.
type MappingMode string

// Supported mapping modes.
const (
	// MappingModeUseDefault uses the default author for every destination change.
	MappingModeUseDefault MappingMode = MappingMode("USE_DEFAULT")
	// MappingModePassThru keeps the origin author.
	MappingModePassThru MappingMode = MappingMode("PASS_THRU")
	// MappingModeWhitelist keeps whitelisted origin authors and substitutes the rest.
	MappingModeWhitelist MappingMode = MappingMode("WHITELIST")
)

// Authoring is the immutable author mapping policy between an origin and a destination.
type Authoring struct {
	defaultAuthor  Author
	mode           MappingMode
	whitelist      map[string]struct{}
	whitelistOrder []string
}

// NewAuthoring validates the policy. In WHITELIST mode the whitelist must be
// non-empty and free of duplicates; other modes ignore it.
func NewAuthoring(defaultAuthor Author, mode MappingMode, whitelist []string) (Authoring, error) {
	switch mode {
	case MappingModePassThru, MappingModeUseDefault:
		return Authoring{defaultAuthor: defaultAuthor, mode: mode, whitelist: map[string]struct{}{}}, nil
	case MappingModeWhitelist:
		whitelistSet, whitelistError := buildWhitelist(whitelist)
		if whitelistError != nil {
			return Authoring{}, whitelistError
		}
		return Authoring{
			defaultAuthor:  defaultAuthor,
			mode:           mode,
			whitelist:      whitelistSet,
			whitelistOrder: append([]string(nil), whitelist...),
		}, nil
	default:
		return Authoring{}, failures.NewValidationError(unknownModeTemplateConstant, mode)
	}
}

// PassThru keeps every origin author; the default is only used for squashed changes.
func PassThru(defaultAuthor string) (Authoring, error) {
	author, parseError := ParseAuthor(defaultAuthor)
	if parseError != nil {
		return Authoring{}, parseError
	}
	return NewAuthoring(author, MappingModePassThru, nil)
}

// Overwrite uses the default author for every destination change.
func Overwrite(defaultAuthor string) (Authoring, error) {
	author, parseError := ParseAuthor(defaultAuthor)
	if parseError != nil {
		return Authoring{}, parseError
	}
	return NewAuthoring(author, MappingModeUseDefault, nil)
}

// Whitelisted keeps the listed origin identities and substitutes everyone else.
func Whitelisted(defaultAuthor string, whitelist []string) (Authoring, error) {
	author, parseError := ParseAuthor(defaultAuthor)
	if parseError != nil {
		return Authoring{}, parseError
	}
	return NewAuthoring(author, MappingModeWhitelist, whitelist)
}

func buildWhitelist(whitelist []string) (map[string]struct{}, error) {
	if len(whitelist) == 0 {
		return nil, failures.NewValidationError(emptyWhitelistMessageConstant)
	}
	whitelistSet := make(map[string]struct{}, len(whitelist))
	for _, identifier := range whitelist {
		if _, duplicate := whitelistSet[identifier]; duplicate {
			return nil, failures.NewValidationError(duplicateWhitelistEntryTemplateConstant, identifier)
		}
		whitelistSet[identifier] = struct{}{}
	}
	return whitelistSet, nil
}

// DefaultAuthor returns the author used for substituted and squashed changes.
func (authoring Authoring) DefaultAuthor() Author {
	return authoring.defaultAuthor
}

// Mode returns the mapping mode.
func (authoring Authoring) Mode() MappingMode {
	return authoring.mode
}

// Whitelist returns the whitelisted identifiers in declaration order.
func (authoring Authoring) Whitelist() []string {
	return append([]string(nil), authoring.whitelistOrder...)
}

// UseAuthor reports whether the origin identity may be used in the destination.
func (authoring Authoring) UseAuthor(identifier string) bool {
	switch authoring.mode {
	case MappingModePassThru:
		return true
	case MappingModeWhitelist:
		_, whitelisted := authoring.whitelist[identifier]
		return whitelisted
	default:
		return false
	}
}

// ResolveAuthor returns the identity a destination writer should record for
// the origin author. Whitelist identifiers are matched against the email.
func (authoring Authoring) ResolveAuthor(originAuthor Author) Author {
	if authoring.UseAuthor(originAuthor.Email) {
		return originAuthor
	}
	return authoring.defaultAuthor
}

// String describes the policy for diagnostics.
func (authoring Authoring) String() string {
	return fmt.Sprintf(authoringDescriptionTemplateConstant, authoring.defaultAuthor, authoring.mode, authoring.whitelistOrder)
}
