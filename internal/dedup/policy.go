package dedup

import (
	"fmt"
	"strings"
	"time"

	"NewsDedup/internal/domain"
)

// DateMode decides which end of the date range survives.
type DateMode string

const (
	KeepOldest DateMode = "keep_oldest"
	KeepNewest DateMode = "keep_newest"
)

// Fallback picks a survivor when no member has a parseable date.
type Fallback string

const (
	KeepFirst Fallback = "keep_first"
	KeepLast  Fallback = "keep_last"
)

// ParseDateMode validates a configured date mode.
func ParseDateMode(s string) (DateMode, error) {
	switch m := DateMode(strings.ToLower(strings.TrimSpace(s))); m {
	case KeepOldest, KeepNewest:
		return m, nil
	default:
		return "", fmt.Errorf("unknown date mode %q", s)
	}
}

// ParseFallback validates a configured no-date fallback.
func ParseFallback(s string) (Fallback, error) {
	switch f := Fallback(strings.ToLower(strings.TrimSpace(s))); f {
	case KeepFirst, KeepLast:
		return f, nil
	default:
		return "", fmt.Errorf("unknown no-date fallback %q", s)
	}
}

// Selector chooses the survivor of one duplicate group. ok is false only for
// an empty group.
type Selector interface {
	Select(group domain.Group) (outcome domain.Outcome, ok bool)
}

// LinkPolicy resolves groups sharing a link: the first strategic article
// wins, otherwise the oldest or newest valid date, otherwise the fallback.
type LinkPolicy struct {
	DateMode DateMode
	NoDate   Fallback
}

var _ Selector = LinkPolicy{}

// Select implements Selector.
func (p LinkPolicy) Select(group domain.Group) (domain.Outcome, bool) {
	if len(group.Articles) == 0 {
		return domain.Outcome{Group: group}, false
	}
	for i, a := range group.Articles {
		if a.Strategic {
			return split(group, i, domain.KeptStrategic), true
		}
	}
	idx, reason := pickByDate(group.Articles, p.DateMode, p.NoDate)
	return split(group, idx, reason), true
}

// TitlePortalPolicy resolves groups sharing title and portal: the first
// article with a relevance tag wins, otherwise the date rule applies.
type TitlePortalPolicy struct {
	DateMode DateMode
	NoDate   Fallback
}

var _ Selector = TitlePortalPolicy{}

// Select implements Selector.
func (p TitlePortalPolicy) Select(group domain.Group) (domain.Outcome, bool) {
	if len(group.Articles) == 0 {
		return domain.Outcome{Group: group}, false
	}
	for i, a := range group.Articles {
		if HasRelevance(a) {
			return split(group, i, domain.KeptRelevance), true
		}
	}
	idx, reason := pickByDate(group.Articles, p.DateMode, p.NoDate)
	return split(group, idx, reason), true
}

// HasRelevance reports whether the relevance tag carries any text.
func HasRelevance(a domain.Article) bool {
	return strings.TrimSpace(a.Relevance) != ""
}

// pickByDate returns the index of the dated article at the requested end of
// the range. Equal dates resolve to the earliest position.
func pickByDate(articles []domain.Article, mode DateMode, fallback Fallback) (int, domain.KeepReason) {
	best := -1
	var bestDate time.Time
	for i, a := range articles {
		d, ok := ParseDate(a.PublishedDate)
		if !ok {
			continue
		}
		if best < 0 ||
			(mode == KeepNewest && d.After(bestDate)) ||
			(mode != KeepNewest && d.Before(bestDate)) {
			best, bestDate = i, d
		}
	}
	if best >= 0 {
		return best, domain.KeptByDate
	}
	if fallback == KeepLast {
		return len(articles) - 1, domain.KeptFallback
	}
	return 0, domain.KeptFallback
}

func split(group domain.Group, keep int, reason domain.KeepReason) domain.Outcome {
	out := domain.Outcome{
		Group:   group,
		Kept:    group.Articles[keep],
		KeptBy:  reason,
		Deleted: make([]domain.Article, 0, len(group.Articles)-1),
	}
	for i, a := range group.Articles {
		if i != keep {
			out.Deleted = append(out.Deleted, a)
		}
	}
	return out
}

// Resolve applies sel to every group of two or more articles.
func Resolve(groups []domain.Group, sel Selector) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(groups))
	for _, g := range groups {
		if len(g.Articles) < 2 {
			continue
		}
		if out, ok := sel.Select(g); ok {
			outcomes = append(outcomes, out)
		}
	}
	return outcomes
}
