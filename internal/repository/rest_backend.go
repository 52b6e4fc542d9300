package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"
	"github.com/jcthewizard/Goalshare-sub000/pkg/tracing"
)

// RESTBackend is the resource-oriented flavor of the goal backend. The API
// keys entities by "_id"; that name is translated to the internal id here and
// nowhere else.
type RESTBackend struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewRESTBackend(baseURL, token string) *RESTBackend {
	return &RESTBackend{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type restStep struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`
	IsSignificant bool      `json:"isSignificant"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"createdAt"`
}

type restGoal struct {
	ID          string           `json:"_id"`
	UserID      string           `json:"userId"`
	Title       string           `json:"title"`
	TargetDate  *time.Time       `json:"targetDate,omitempty"`
	Completed   bool             `json:"completed"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Pinned      bool             `json:"pinned"`
	Milestones  []restStep       `json:"milestones"`
	Timeline    []restStep       `json:"timeline"`
	Theme       *model.GoalTheme `json:"theme,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func (r *restGoal) toModel() model.Goal {
	g := model.Goal{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		TargetDate:  r.TargetDate,
		Completed:   r.Completed,
		CompletedAt: r.CompletedAt,
		Pinned:      r.Pinned,
		CreatedAt:   r.CreatedAt,
	}
	if r.Theme != nil {
		g.Theme = *r.Theme
	}
	g.Milestones = make([]model.Milestone, 0, len(r.Milestones))
	for _, s := range r.Milestones {
		g.Milestones = append(g.Milestones, model.Milestone(restStepToStep(s)))
	}
	g.Timeline = make([]model.TimelineItem, 0, len(r.Timeline))
	for _, s := range r.Timeline {
		g.Timeline = append(g.Timeline, model.TimelineItem(restStepToStep(s)))
	}
	normalizeGoal(&g)
	return g
}

func restStepToStep(s restStep) model.Milestone {
	return model.Milestone{
		ID:            s.ID,
		Title:         s.Title,
		Description:   s.Description,
		ImageURL:      s.ImageURL,
		ThumbnailURL:  s.ThumbnailURL,
		IsSignificant: s.IsSignificant,
		Completed:     s.Completed,
		CreatedAt:     s.CreatedAt,
	}
}

// do issues one API call. Any transport or non-2xx outcome is surfaced as a
// wrapped fetch-failed error so callers see a single condition.
func (b *RESTBackend) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	ctx, span := tracing.Tracer.Start(ctx, fmt.Sprintf("backend.rest.%s %s", method, path))
	defer span.End()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return util.ErrGoalNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s returned %d", util.ErrFetchFailed, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
		}
	}
	return nil
}

func (b *RESTBackend) FetchAll(ctx context.Context, ownerID string) ([]model.Goal, error) {
	var docs []restGoal
	path := "/goals?userId=" + url.QueryEscape(ownerID)
	if err := b.do(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	goals := make([]model.Goal, 0, len(docs))
	for i := range docs {
		goals = append(goals, docs[i].toModel())
	}
	return goals, nil
}

func (b *RESTBackend) Create(ctx context.Context, goal *model.Goal) (*model.Goal, error) {
	payload := restGoal{
		UserID:     goal.UserID,
		Title:      goal.Title,
		TargetDate: goal.TargetDate,
		Pinned:     goal.Pinned,
		Theme:      &goal.Theme,
		CreatedAt:  goal.CreatedAt,
		Milestones: []restStep{},
		Timeline:   []restStep{},
	}
	var created restGoal
	if err := b.do(ctx, http.MethodPost, "/goals", payload, &created); err != nil {
		return nil, err
	}
	g := created.toModel()
	return &g, nil
}

func (b *RESTBackend) Update(ctx context.Context, id string, patch GoalPatch) (*model.Goal, error) {
	var updated restGoal
	if err := b.do(ctx, http.MethodPut, "/goals/"+id, patch, &updated); err != nil {
		return nil, err
	}
	g := updated.toModel()
	return &g, nil
}

func (b *RESTBackend) Delete(ctx context.Context, id string) error {
	return b.do(ctx, http.MethodDelete, "/goals/"+id, nil, nil)
}

func (b *RESTBackend) AddMilestone(ctx context.Context, goalID string, m model.Milestone) (*model.Goal, error) {
	var updated restGoal
	if err := b.do(ctx, http.MethodPost, "/goals/"+goalID+"/milestones", m, &updated); err != nil {
		return nil, err
	}
	g := updated.toModel()
	return &g, nil
}

func (b *RESTBackend) UpdateMilestone(ctx context.Context, goalID, milestoneID string, patch StepPatch) (*model.Goal, error) {
	var updated restGoal
	if err := b.do(ctx, http.MethodPut, "/goals/"+goalID+"/milestones/"+milestoneID, patch, &updated); err != nil {
		return nil, err
	}
	g := updated.toModel()
	return &g, nil
}

func (b *RESTBackend) DeleteMilestone(ctx context.Context, goalID, milestoneID string) (*model.Goal, error) {
	var updated restGoal
	if err := b.do(ctx, http.MethodDelete, "/goals/"+goalID+"/milestones/"+milestoneID, nil, &updated); err != nil {
		return nil, err
	}
	g := updated.toModel()
	return &g, nil
}

func (b *RESTBackend) AddTimelineItem(ctx context.Context, goalID string, item model.TimelineItem) (*model.Goal, error) {
	var updated restGoal
	if err := b.do(ctx, http.MethodPost, "/goals/"+goalID+"/timeline", item, &updated); err != nil {
		return nil, err
	}
	g := updated.toModel()
	return &g, nil
}

func (b *RESTBackend) UpdateTimelineItem(ctx context.Context, goalID, itemID string, patch StepPatch) (*model.Goal, error) {
	var updated restGoal
	if err := b.do(ctx, http.MethodPut, "/goals/"+goalID+"/timeline/"+itemID, patch, &updated); err != nil {
		return nil, err
	}
	g := updated.toModel()
	return &g, nil
}

func (b *RESTBackend) DeleteTimelineItem(ctx context.Context, goalID, itemID string) (*model.Goal, error) {
	var updated restGoal
	if err := b.do(ctx, http.MethodDelete, "/goals/"+goalID+"/timeline/"+itemID, nil, &updated); err != nil {
		return nil, err
	}
	g := updated.toModel()
	return &g, nil
}
