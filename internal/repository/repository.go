package repository

import (
	"sort"
	"strings"
	"time"
)

// Collection names, one stored document each
const (
	CollectionClients       = "clients"
	CollectionProjects      = "projects"
	CollectionInvoices      = "invoices"
	CollectionNotifications = "notifications"
	CollectionUsers         = "users"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage clamps page and pageSize to sane values
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// newestFirst sorts records by creation time, newest first. Ties keep stored order.
func newestFirst[T interface{ Created() time.Time }](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Created().After(items[j].Created())
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
