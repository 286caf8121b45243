package github

import (
	"strings"
)

// Remote identifies a repository hosted on GitHub.
type Remote struct {
	Owner string
	Name  string
}

func (r Remote) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRemoteURL extracts the owner and repository name from a git remote URL
// pointing at github.com. Supported shapes:
//
//	https://github.com/OWNER/REPO[.git]
//	git@github.com:OWNER/REPO[.git]
//	ssh://git@github.com/OWNER/REPO[.git]
//
// Remotes on other hosts report ok=false; they are not an error, the lookup
// simply does not apply to them.
func ParseRemoteURL(raw string) (remote Remote, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Remote{}, false
	}

	var path string
	switch {
	case strings.HasPrefix(raw, "https://github.com/"), strings.HasPrefix(raw, "http://github.com/"):
		_, path, _ = strings.Cut(raw, "github.com/")
	case strings.HasPrefix(raw, "ssh://"):
		rest := strings.TrimPrefix(raw, "ssh://")
		if user, hostPath, found := strings.Cut(rest, "@"); found && user != "" {
			rest = hostPath
		}
		host, p, found := strings.Cut(rest, "/")
		if !found || host != "github.com" {
			return Remote{}, false
		}
		path = p
	case strings.HasPrefix(raw, "git@github.com:"):
		path = strings.TrimPrefix(raw, "git@github.com:")
	default:
		return Remote{}, false
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	owner, name, found := strings.Cut(path, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return Remote{}, false
	}
	return Remote{Owner: owner, Name: name}, true
}
