package effects

import "github.com/google/uuid"

// Severity ranks news items for UI display.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

// NewsItem is one headline in the colony news feed.
type NewsItem struct {
	ID       string   `json:"id"`
	Tick     uint64   `json:"tick"`
	Headline string   `json:"headline"`
	Category string   `json:"category"` // "colony", "economy", "environment", "security", ...
	Severity Severity `json:"severity"`
}

// Feed is the append-only, capped colony news feed.
type Feed struct {
	items []NewsItem
	cap   int
}

// NewFeed creates a feed keeping at most capacity items.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 200
	}
	return &Feed{cap: capacity}
}

// Push appends a headline, evicting the oldest entries past capacity.
func (f *Feed) Push(tick uint64, headline, category string, sev Severity) NewsItem {
	item := NewsItem{
		ID:       uuid.NewString(),
		Tick:     tick,
		Headline: headline,
		Category: category,
		Severity: sev,
	}
	f.items = append(f.items, item)
	if len(f.items) > f.cap {
		f.items = f.items[len(f.items)-f.cap:]
	}
	return item
}

// Items returns the current feed, oldest first.
func (f *Feed) Items() []NewsItem {
	return f.items
}

// Recent returns up to n of the newest items, newest last.
func (f *Feed) Recent(n int) []NewsItem {
	if n <= 0 || len(f.items) == 0 {
		return nil
	}
	if n > len(f.items) {
		n = len(f.items)
	}
	return f.items[len(f.items)-n:]
}
