package gitrepo

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	gitHubHostConstant                     = "github.com"
	scpUserPrefixConstant                  = "git@"
	scpHostDelimiterConstant               = ":"
	projectPathSeparatorConstant           = "/"
	gitDirectorySuffixConstant             = ".git"
	gitHubProjectErrorTemplateConstant     = "'%s' is not a GitHub repository url: %s"
	gitHubProjectEmptyReasonConstant       = "url is empty"
	gitHubProjectHostReasonConstant        = "host is not github.com"
	gitHubProjectPathReasonConstant        = "expected <owner>/<name> path"
	gitHubProjectSchemeReasonConstant      = "unsupported scheme"
	gitHubProjectCanonicalTemplateConstant = "https://github.com/%s/%s"
)

var supportedGitHubSchemes = map[string]struct{}{
	"https": {},
	"http":  {},
	"ssh":   {},
	"git":   {},
}

// GitHubProject identifies a repository hosted on github.com.
type GitHubProject struct {
	Owner string
	Name  string
}

// CanonicalURL renders the https clone url for the project.
func (project GitHubProject) CanonicalURL() string {
	return fmt.Sprintf(gitHubProjectCanonicalTemplateConstant, project.Owner, project.Name)
}

// GitHubProjectError reports a url rejected by ParseGitHubProject.
type GitHubProjectError struct {
	URL    string
	Reason string
}

// Error describes the rejected url.
func (projectError GitHubProjectError) Error() string {
	return fmt.Sprintf(gitHubProjectErrorTemplateConstant, projectError.URL, projectError.Reason)
}

// ParseGitHubProject accepts https, ssh and scp-like (git@github.com:owner/name) urls.
func ParseGitHubProject(repositoryURL string) (GitHubProject, error) {
	trimmedURL := strings.TrimSpace(repositoryURL)
	if len(trimmedURL) == 0 {
		return GitHubProject{}, GitHubProjectError{URL: repositoryURL, Reason: gitHubProjectEmptyReasonConstant}
	}

	if strings.HasPrefix(trimmedURL, scpUserPrefixConstant) {
		hostAndPath := strings.TrimPrefix(trimmedURL, scpUserPrefixConstant)
		host, projectPath, found := strings.Cut(hostAndPath, scpHostDelimiterConstant)
		if !found {
			return GitHubProject{}, GitHubProjectError{URL: repositoryURL, Reason: gitHubProjectPathReasonConstant}
		}
		return projectFromHostAndPath(repositoryURL, host, projectPath)
	}

	parsedURL, parseError := url.Parse(trimmedURL)
	if parseError != nil {
		return GitHubProject{}, GitHubProjectError{URL: repositoryURL, Reason: parseError.Error()}
	}
	if _, supported := supportedGitHubSchemes[strings.ToLower(parsedURL.Scheme)]; !supported {
		return GitHubProject{}, GitHubProjectError{URL: repositoryURL, Reason: gitHubProjectSchemeReasonConstant}
	}
	return projectFromHostAndPath(repositoryURL, parsedURL.Hostname(), parsedURL.Path)
}

func projectFromHostAndPath(repositoryURL string, host string, projectPath string) (GitHubProject, error) {
	if !strings.EqualFold(host, gitHubHostConstant) {
		return GitHubProject{}, GitHubProjectError{URL: repositoryURL, Reason: gitHubProjectHostReasonConstant}
	}
	segments := strings.Split(strings.Trim(projectPath, projectPathSeparatorConstant), projectPathSeparatorConstant)
	if len(segments) != 2 {
		return GitHubProject{}, GitHubProjectError{URL: repositoryURL, Reason: gitHubProjectPathReasonConstant}
	}
	owner := segments[0]
	name := strings.TrimSuffix(segments[1], gitDirectorySuffixConstant)
	if len(owner) == 0 || len(name) == 0 {
		return GitHubProject{}, GitHubProjectError{URL: repositoryURL, Reason: gitHubProjectPathReasonConstant}
	}
	return GitHubProject{Owner: owner, Name: name}, nil
}
