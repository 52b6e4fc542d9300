package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatestActivityUsesNewestTimestamp(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	g := &Goal{
		CreatedAt: base,
		Milestones: []Milestone{
			{CreatedAt: base.Add(24 * time.Hour)},
		},
		Timeline: []TimelineItem{
			{CreatedAt: base.Add(72 * time.Hour)},
			{CreatedAt: base.Add(48 * time.Hour)},
		},
	}

	assert.Equal(t, base.Add(72*time.Hour), LatestActivity(g))
}

func TestLatestActivityFallsBackToCreatedAt(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	g := &Goal{CreatedAt: base}

	assert.Equal(t, base, LatestActivity(g))
}

func TestDefaultThemeIsNonEmpty(t *testing.T) {
	theme := DefaultTheme()
	assert.NotEmpty(t, theme.Primary)
	assert.NotEmpty(t, theme.Secondary)
	assert.NotEmpty(t, theme.Accent)
}

func TestGenerateIDUnique(t *testing.T) {
	assert.NotEqual(t, GenerateID(), GenerateID())
}

func TestFeedUpdateLiked(t *testing.T) {
	u := FeedUpdate{Likes: []string{"a", "b"}}
	assert.True(t, u.Liked("a"))
	assert.False(t, u.Liked("c"))
}
