package remote

import (
	"strings"

	cerrors "github.com/egeskov-group/odooctl/internal/errors"
)

// CheckEnvironment rejects deploy targets whose name does not contain
// one of the allowed environment keywords. Production-looking servers
// are only reachable with force set.
func CheckEnvironment(server string, allowed []string, force bool) error {
	if force {
		return nil
	}
	for _, keyword := range allowed {
		if keyword != "" && strings.Contains(server, keyword) {
			return nil
		}
	}
	return cerrors.New(cerrors.CodeRemoteGuard, "remote",
		"server %q does not look like a %s environment", server, strings.Join(allowed, "/")).
		WithSuggestions("pass --force to deploy anyway")
}
