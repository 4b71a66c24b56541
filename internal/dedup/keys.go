package dedup

import (
	"fmt"
	"strings"

	"NewsDedup/internal/domain"
)

// IdentityKey names the attribute tuple that makes two rows the same article.
type IdentityKey string

const (
	KeyLink        IdentityKey = "link"
	KeyTitlePortal IdentityKey = "title_portal"
)

const keySeparator = "\x00"

// ParseIdentityKey validates a key name coming from configuration.
func ParseIdentityKey(name string) (IdentityKey, error) {
	switch k := IdentityKey(strings.ToLower(strings.TrimSpace(name))); k {
	case KeyLink, KeyTitlePortal:
		return k, nil
	default:
		return "", fmt.Errorf("unknown identity key %q", name)
	}
}

// ValueOf extracts the grouping value of an article under this key.
func (k IdentityKey) ValueOf(a domain.Article) string {
	if k == KeyTitlePortal {
		return a.Title + keySeparator + a.Portal
	}
	return a.Link
}

// Display renders a key value for humans.
func (k IdentityKey) Display(value string) string {
	return strings.ReplaceAll(value, keySeparator, " | ")
}
