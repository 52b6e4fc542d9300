package model

import (
	"time"

	"github.com/google/uuid"
)

// GoalTheme presentation colors for a goal card.
type GoalTheme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// DefaultTheme is applied when a backend document carries no theme.
func DefaultTheme() GoalTheme {
	return GoalTheme{Primary: "#4A90D9", Secondary: "#F5A623", Accent: "#FFFFFF"}
}

// Milestone is a planned step of a goal. Milestones are owned by their
// parent goal and have no independent lifecycle.
type Milestone struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`
	IsSignificant bool      `json:"isSignificant"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TimelineItem is a recorded occurrence on a goal. Structurally it matches
// Milestone, but timeline entries are append-only: the cache always prepends
// and never reorders them.
type TimelineItem struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`
	IsSignificant bool      `json:"isSignificant"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Goal struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Title       string         `json:"title"`
	TargetDate  *time.Time     `json:"targetDate,omitempty"`
	Completed   bool           `json:"completed"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	Pinned      bool           `json:"pinned"`
	Milestones  []Milestone    `json:"milestones"`
	Timeline    []TimelineItem `json:"timeline"`
	Theme       GoalTheme      `json:"theme"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// LatestActivity is the freshness signal used to order unpinned goals: the
// maximum of the goal's own creation time and every child milestone/timeline
// creation time. Derived on demand so it can never go stale.
func LatestActivity(g *Goal) time.Time {
	latest := g.CreatedAt
	for i := range g.Milestones {
		if g.Milestones[i].CreatedAt.After(latest) {
			latest = g.Milestones[i].CreatedAt
		}
	}
	for i := range g.Timeline {
		if g.Timeline[i].CreatedAt.After(latest) {
			latest = g.Timeline[i].CreatedAt
		}
	}
	return latest
}

// Clone returns a deep copy. The child slices get their own backing arrays
// so a returned snapshot cannot observe later in-place cache mutations.
func (g *Goal) Clone() Goal {
	out := *g
	out.Milestones = append([]Milestone{}, g.Milestones...)
	out.Timeline = append([]TimelineItem{}, g.Timeline...)
	if g.TargetDate != nil {
		td := *g.TargetDate
		out.TargetDate = &td
	}
	if g.CompletedAt != nil {
		ca := *g.CompletedAt
		out.CompletedAt = &ca
	}
	return out
}

func GenerateID() string {
	return uuid.New().String()
}
