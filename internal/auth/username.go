package auth

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

var usernameChars = regexp.MustCompile(`[^a-z0-9_]`)

const (
	usernameMinBase = 3
	usernameMaxLen  = 45
)

// AllocateUsername derives a collision-free handle for a first-time
// external login. The display name is case-folded and stripped to
// [a-z0-9_]; if fewer than three characters survive, the email local
// part gets the same treatment, and "user" is the final fallback. The
// base is then probed as base, base1, base2, ... until free.
func (r *Repo) AllocateUsername(ctx context.Context, displayName, email string) (string, error) {
	base := usernameChars.ReplaceAllString(strings.ToLower(displayName), "")
	if len(base) < usernameMinBase {
		local := email
		if i := strings.Index(email, "@"); i >= 0 {
			local = email[:i]
		}
		base = usernameChars.ReplaceAllString(strings.ToLower(local), "")
	}
	if len(base) < usernameMinBase {
		base = "user"
	}
	if len(base) > usernameMaxLen {
		base = base[:usernameMaxLen]
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := r.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(suffix)
	}
}
