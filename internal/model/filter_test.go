package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveWindowOnlyUnderTop(t *testing.T) {
	f := FilterState{Scope: ScopeAll, Sort: SortTop, Window: WindowWeek}
	assert.Equal(t, WindowWeek, f.EffectiveWindow())

	f.Sort = SortHot
	assert.Equal(t, WindowAll, f.EffectiveWindow())
	assert.Equal(t, WindowWeek, f.Window, "window must survive a sort change")

	f.Sort = SortTop
	assert.Equal(t, WindowWeek, f.EffectiveWindow())
}

func TestParseSortAndWindow(t *testing.T) {
	s, err := ParseSort(" Rising ")
	require.NoError(t, err)
	assert.Equal(t, SortRising, s)

	_, err = ParseSort("best")
	assert.Error(t, err)

	w, err := ParseWindow("YEAR")
	require.NoError(t, err)
	assert.Equal(t, WindowYear, w)

	_, err = ParseWindow("decade")
	assert.Error(t, err)
}

func TestNormalizedFillsDefaults(t *testing.T) {
	f := FilterState{Query: "  golang "}.Normalized()
	assert.Equal(t, FilterState{Scope: ScopeAll, Sort: SortHot, Window: WindowDay, Query: "golang"}, f)
	assert.True(t, f.AllScopes())
	assert.False(t, FilterState{Scope: "golang"}.AllScopes())
	assert.True(t, FilterState{Scope: "ALL"}.AllScopes())
}
