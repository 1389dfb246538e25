package model

import (
	"fmt"
	"strings"
)

// ScopeAll is the scope sentinel meaning "no community restriction".
const ScopeAll = "all"

// SortMode selects the ranking formula.
type SortMode string

const (
	SortHot    SortMode = "hot"
	SortNew    SortMode = "new"
	SortTop    SortMode = "top"
	SortRising SortMode = "rising"
)

// TimeWindow is the recency cutoff used by the top sort.
type TimeWindow string

const (
	WindowHour  TimeWindow = "hour"
	WindowDay   TimeWindow = "day"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
	WindowAll   TimeWindow = "all"
)

// ParseSort validates a user supplied sort mode.
func ParseSort(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SortHot, SortNew, SortTop, SortRising:
		return m, nil
	default:
		return "", fmt.Errorf("model: unknown sort mode %q", s)
	}
}

// ParseWindow validates a user supplied time window.
func ParseWindow(s string) (TimeWindow, error) {
	switch w := TimeWindow(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowHour, WindowDay, WindowWeek, WindowMonth, WindowYear, WindowAll:
		return w, nil
	default:
		return "", fmt.Errorf("model: unknown time window %q", s)
	}
}

// FilterState is the user-selected filter set of a feed.
//
// Window is kept even while Sort is not SortTop so that switching back to
// top restores the previously chosen window.
type FilterState struct {
	Scope  string     `json:"scope" yaml:"scope"`
	Sort   SortMode   `json:"sort" yaml:"sort"`
	Window TimeWindow `json:"window" yaml:"window"`
	Query  string     `json:"query" yaml:"query"`
}

// DefaultFilters returns the filter set used when nothing was chosen.
func DefaultFilters() FilterState {
	return FilterState{Scope: ScopeAll, Sort: SortHot, Window: WindowDay}
}

// EffectiveWindow returns the window that applies to ranking and fetching:
// the stored window under top, WindowAll otherwise.
func (f FilterState) EffectiveWindow() TimeWindow {
	if f.Sort != SortTop || f.Window == "" {
		return WindowAll
	}
	return f.Window
}

// AllScopes reports whether the scope is unrestricted.
func (f FilterState) AllScopes() bool {
	s := strings.TrimSpace(f.Scope)
	return s == "" || strings.EqualFold(s, ScopeAll)
}

// Normalized fills empty fields with defaults and trims user input.
func (f FilterState) Normalized() FilterState {
	d := DefaultFilters()
	f.Scope = strings.TrimSpace(f.Scope)
	if f.Scope == "" {
		f.Scope = d.Scope
	}
	if f.Sort == "" {
		f.Sort = d.Sort
	}
	if f.Window == "" {
		f.Window = d.Window
	}
	f.Query = strings.TrimSpace(f.Query)
	return f
}
