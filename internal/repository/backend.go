package repository

import (
	"context"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
)

// GoalBackend is the single contract the goal cache reconciles against.
// Two concrete schemas sit behind it: a document/query store (mongo) and a
// resource-oriented HTTP API. Neither schema's field names leak past this
// boundary.
type GoalBackend interface {
	FetchAll(ctx context.Context, ownerID string) ([]model.Goal, error)
	Create(ctx context.Context, goal *model.Goal) (*model.Goal, error)
	Update(ctx context.Context, id string, patch GoalPatch) (*model.Goal, error)
	Delete(ctx context.Context, id string) error

	AddMilestone(ctx context.Context, goalID string, m model.Milestone) (*model.Goal, error)
	UpdateMilestone(ctx context.Context, goalID, milestoneID string, patch StepPatch) (*model.Goal, error)
	DeleteMilestone(ctx context.Context, goalID, milestoneID string) (*model.Goal, error)

	AddTimelineItem(ctx context.Context, goalID string, item model.TimelineItem) (*model.Goal, error)
	UpdateTimelineItem(ctx context.Context, goalID, itemID string, patch StepPatch) (*model.Goal, error)
	DeleteTimelineItem(ctx context.Context, goalID, itemID string) (*model.Goal, error)
}

// GoalPatch carries only the fields to change; nil means leave untouched.
type GoalPatch struct {
	Title       *string          `json:"title,omitempty"`
	TargetDate  *time.Time       `json:"targetDate,omitempty"`
	Completed   *bool            `json:"completed,omitempty"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Pinned      *bool            `json:"pinned,omitempty"`
	Theme       *model.GoalTheme `json:"theme,omitempty"`
}

// StepPatch is the partial update shape shared by milestones and timeline
// items.
type StepPatch struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	ImageURL      *string `json:"imageUrl,omitempty"`
	ThumbnailURL  *string `json:"thumbnailUrl,omitempty"`
	IsSignificant *bool   `json:"isSignificant,omitempty"`
	Completed     *bool   `json:"completed,omitempty"`
}

// normalizeGoal supplies defaults for fields a backend document may be
// missing. A malformed document is coerced to a hydratable shape rather than
// dropped so the cache size stays consistent with server truth.
func normalizeGoal(g *model.Goal) {
	if g.Title == "" {
		g.Title = "Untitled Goal"
	}
	if g.Milestones == nil {
		g.Milestones = []model.Milestone{}
	}
	if g.Timeline == nil {
		g.Timeline = []model.TimelineItem{}
	}
	if g.Theme == (model.GoalTheme{}) {
		g.Theme = model.DefaultTheme()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
}
