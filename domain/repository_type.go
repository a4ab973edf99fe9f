package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Domain identifies one of the switchable data domains.
type Domain string

const (
	Posts    Domain = "posts"
	Users    Domain = "users"
	Accounts Domain = "accounts"
)

// Domains lists every domain in a stable order.
func Domains() []Domain {
	return []Domain{Posts, Users, Accounts}
}

// ParseDomain validates a domain name.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Domains() {
		if d == known {
			return d, nil
		}
	}
	return "", NewValidationError("domain", fmt.Sprintf("unknown domain %q", s))
}

// RepositoryType tags the backing store that serves a domain.
type RepositoryType string

const (
	// Remote is the REST API backed store.
	Remote RepositoryType = "remote"
	// Local is the persistent-local blob store.
	Local RepositoryType = "local"
	// Memory is the ephemeral in-memory mock store.
	Memory RepositoryType = "memory"
	// Database is the SQL store. It is not part of the default selector set
	// and is only available when a container registers a factory for it.
	Database RepositoryType = "database"
)

var repositoryTypeAliases = map[string]RepositoryType{
	"remote":        Remote,
	"rest":          Remote,
	"api":           Remote,
	"local":         Local,
	"local_storage": Local,
	"persistent":    Local,
	"memory":        Memory,
	"in_memory":     Memory,
	"mock":          Memory,
	"database":      Database,
	"sql":           Database,
	"db":            Database,
}

// ParseRepositoryType normalizes a user supplied tag. Spellings such as
// "localStorage", "local-storage" and "LOCAL" resolve to Local. Unknown tags
// are returned in snake_case so they can still match a custom factory.
func ParseRepositoryType(s string) (RepositoryType, error) {
	key := toSnake(strings.TrimSpace(s))
	if key == "" {
		return "", NewValidationError("type", "repository type is required")
	}
	if t, ok := repositoryTypeAliases[key]; ok {
		return t, nil
	}
	return RepositoryType(key), nil
}

func (t RepositoryType) String() string {
	return string(t)
}

// Label is the human readable source name used in notifications.
func (t RepositoryType) Label() string {
	switch t {
	case Remote:
		return "Remote API"
	case Local:
		return "Local Storage"
	case Memory:
		return "In-Memory"
	case Database:
		return "Database"
	default:
		return string(t)
	}
}

// toSnake converts the provided string to snake_case using ASCII-aware rules.
// Punctuation collapses into a single underscore so camelCase, kebab-case and
// dotted spellings of the same tag land on one key.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if (unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower) && !lastUnderscore {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r), unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}
