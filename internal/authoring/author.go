package authoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	authorFormatTemplateConstant          = "%s <%s>"
	authorMismatchMessageTemplateConstant = "Author '%s' doesn't match the expected format 'name <mail@example.com>'"
	authorNameGroupConstant               = "name"
	authorEmailGroupConstant              = "email"
)

var authorPattern = regexp.MustCompile(`^(?P<name>[^<]+)<(?P<email>[^>]*)>$`)

// Author is a commit identity.
type Author struct {
	Name  string
	Email string
}

// NewAuthor builds an Author from its parts.
func NewAuthor(name string, email string) Author {
	return Author{Name: name, Email: email}
}

// ParseAuthor parses "name <email>" into an Author.
func ParseAuthor(authorString string) (Author, error) {
	trimmedAuthor := strings.TrimSpace(authorString)
	matches := authorPattern.FindStringSubmatch(trimmedAuthor)
	if matches == nil {
		return Author{}, failures.NewValidationError(authorMismatchMessageTemplateConstant, authorString)
	}

	name := strings.TrimSpace(matches[authorPattern.SubexpIndex(authorNameGroupConstant)])
	email := strings.TrimSpace(matches[authorPattern.SubexpIndex(authorEmailGroupConstant)])
	if len(name) == 0 {
		return Author{}, failures.NewValidationError(authorMismatchMessageTemplateConstant, authorString)
	}

	return Author{Name: name, Email: email}, nil
}

// String renders the author in git's "name <email>" form.
func (author Author) String() string {
	return fmt.Sprintf(authorFormatTemplateConstant, author.Name, author.Email)
}
