package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
	"github.com/jcthewizard/Goalshare-sub000/internal/repository"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"
	"github.com/jcthewizard/Goalshare-sub000/pkg/monitoring"

	"go.uber.org/zap"
)

const remoteWriteTimeout = 15 * time.Second

// GoalService owns the authoritative in-memory goal cache and reconciles it
// against the remote backend. Every mutation applies to the cache first so
// the caller never waits on the network; the remote write runs asynchronously
// and, when it confirms, the server shape replaces the optimistic entry (to
// pick up server-assigned ids and timestamps).
//
// Failed remote writes do NOT roll the cache back. The optimistic state stays
// visible, the failure is logged and counted, and the next Refresh reconciles
// with server truth. Two in-flight writes for the same goal resolve
// last-write-wins.
type GoalService struct {
	backend repository.GoalBackend
	log     *zap.Logger

	mu    sync.Mutex
	goals []*model.Goal

	wg          sync.WaitGroup
	onSyncError func(op string, err error)
}

func NewGoalService(backend repository.GoalBackend, log *zap.Logger) *GoalService {
	return &GoalService{backend: backend, log: log}
}

// SetSyncErrorHook registers a callback invoked when a background remote
// write fails. Used by the UI layer to raise a notice; never retried here.
func (s *GoalService) SetSyncErrorHook(hook func(op string, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSyncError = hook
}

// Flush blocks until every in-flight remote write has resolved. Called on
// shutdown and by tests.
func (s *GoalService) Flush() {
	s.wg.Wait()
}

// CreateGoalRequest create-time validation happens before any optimistic
// mutation; updates of already-cached entities are not re-validated.
type CreateGoalRequest struct {
	Title      string           `json:"title" binding:"required,max=255"`
	TargetDate *time.Time       `json:"targetDate"`
	Pinned     bool             `json:"pinned"`
	Theme      *model.GoalTheme `json:"theme"`
}

type AddStepRequest struct {
	Title         string `json:"title" binding:"required,max=255"`
	Description   string `json:"description" binding:"max=1000"`
	ImageURL      string `json:"imageUrl"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	IsSignificant bool   `json:"isSignificant"`
}

// Refresh replaces the cache with server truth. This is the only
// synchronization primitive with the remote store.
func (s *GoalService) Refresh(ctx context.Context, userID string) error {
	goals, err := s.backend.FetchAll(ctx, userID)
	if err != nil {
		monitoring.SyncOperations.WithLabelValues("fetchAll", "error").Inc()
		return err
	}
	monitoring.SyncOperations.WithLabelValues("fetchAll", "ok").Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = make([]*model.Goal, 0, len(goals))
	for i := range goals {
		g := goals[i]
		s.goals = append(s.goals, &g)
	}
	return nil
}

// Goals returns the display ordering: pinned goals first, in pin order, then
// unpinned goals by descending latest activity so fresh timeline entries bump
// a goal back to the top.
func (s *GoalService) Goals() []model.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		if out[i].Pinned {
			return false // pinned goals keep their pin order
		}
		return model.LatestActivity(&out[i]).After(model.LatestActivity(&out[j]))
	})
	return out
}

func (s *GoalService) Get(id string) (model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.find(id)
	if g == nil {
		return model.Goal{}, util.ErrGoalNotFound
	}
	return g.Clone(), nil
}

// Add prepends a new goal to the cache and hands it to the backend.
func (s *GoalService) Add(ctx context.Context, userID string, req CreateGoalRequest) (model.Goal, error) {
	if req.Title == "" {
		return model.Goal{}, util.ErrTitleRequired
	}

	goal := &model.Goal{
		ID:         model.GenerateID(),
		UserID:     userID,
		Title:      req.Title,
		TargetDate: req.TargetDate,
		Pinned:     req.Pinned,
		Milestones: []model.Milestone{},
		Timeline:   []model.TimelineItem{},
		Theme:      model.DefaultTheme(),
		CreatedAt:  time.Now(),
	}
	if req.Theme != nil {
		goal.Theme = *req.Theme
	}

	s.mu.Lock()
	s.goals = append([]*model.Goal{goal}, s.goals...)
	snapshot := goal.Clone()
	s.mu.Unlock()

	optimisticID := goal.ID
	s.background("create", func(ctx context.Context) error {
		confirmed, err := s.backend.Create(ctx, &snapshot)
		if err != nil {
			return err
		}
		s.replace(optimisticID, confirmed)
		return nil
	})

	return snapshot, nil
}

func (s *GoalService) Update(ctx context.Context, id string, patch repository.GoalPatch) (model.Goal, error) {
	s.mu.Lock()
	g := s.find(id)
	if g == nil {
		s.mu.Unlock()
		return model.Goal{}, util.ErrGoalNotFound
	}
	applyGoalPatch(g, patch)
	snapshot := g.Clone()
	s.mu.Unlock()

	s.background("update", func(ctx context.Context) error {
		confirmed, err := s.backend.Update(ctx, id, patch)
		if err != nil {
			return err
		}
		s.replace(id, confirmed)
		return nil
	})

	return snapshot, nil
}

func (s *GoalService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return util.ErrGoalNotFound
	}
	s.goals = append(s.goals[:idx], s.goals[idx+1:]...)
	s.mu.Unlock()

	s.background("delete", func(ctx context.Context) error {
		return s.backend.Delete(ctx, id)
	})
	return nil
}

// AddMilestone prepends, newest-first.
func (s *GoalService) AddMilestone(ctx context.Context, goalID string, req AddStepRequest) (model.Milestone, error) {
	m := model.Milestone{
		ID:            model.GenerateID(),
		Title:         req.Title,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		ThumbnailURL:  req.ThumbnailURL,
		IsSignificant: req.IsSignificant,
		CreatedAt:     time.Now(),
	}

	s.mu.Lock()
	g := s.find(goalID)
	if g == nil {
		s.mu.Unlock()
		return model.Milestone{}, util.ErrGoalNotFound
	}
	g.Milestones = append([]model.Milestone{m}, g.Milestones...)
	s.mu.Unlock()

	s.background("addMilestone", func(ctx context.Context) error {
		confirmed, err := s.backend.AddMilestone(ctx, goalID, m)
		if err != nil {
			return err
		}
		s.replace(goalID, confirmed)
		return nil
	})
	return m, nil
}

func (s *GoalService) UpdateMilestone(ctx context.Context, goalID, milestoneID string, patch repository.StepPatch) (model.Milestone, error) {
	s.mu.Lock()
	g := s.find(goalID)
	if g == nil {
		s.mu.Unlock()
		return model.Milestone{}, util.ErrGoalNotFound
	}
	var updated *model.Milestone
	for i := range g.Milestones {
		if g.Milestones[i].ID == milestoneID {
			applyStepPatch(&g.Milestones[i], patch)
			updated = &g.Milestones[i]
			break
		}
	}
	if updated == nil {
		s.mu.Unlock()
		return model.Milestone{}, util.ErrMilestoneNotFound
	}
	snapshot := *updated
	s.mu.Unlock()

	s.background("updateMilestone", func(ctx context.Context) error {
		confirmed, err := s.backend.UpdateMilestone(ctx, goalID, milestoneID, patch)
		if err != nil {
			return err
		}
		s.replace(goalID, confirmed)
		return nil
	})
	return snapshot, nil
}

func (s *GoalService) DeleteMilestone(ctx context.Context, goalID, milestoneID string) error {
	s.mu.Lock()
	g := s.find(goalID)
	if g == nil {
		s.mu.Unlock()
		return util.ErrGoalNotFound
	}
	found := false
	for i := range g.Milestones {
		if g.Milestones[i].ID == milestoneID {
			g.Milestones = append(g.Milestones[:i], g.Milestones[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return util.ErrMilestoneNotFound
	}

	s.background("deleteMilestone", func(ctx context.Context) error {
		confirmed, err := s.backend.DeleteMilestone(ctx, goalID, milestoneID)
		if err != nil {
			return err
		}
		s.replace(goalID, confirmed)
		return nil
	})
	return nil
}

func (s *GoalService) AddTimelineItem(ctx context.Context, goalID string, req AddStepRequest) (model.TimelineItem, error) {
	item := model.TimelineItem{
		ID:            model.GenerateID(),
		Title:         req.Title,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		ThumbnailURL:  req.ThumbnailURL,
		IsSignificant: req.IsSignificant,
		CreatedAt:     time.Now(),
	}

	s.mu.Lock()
	g := s.find(goalID)
	if g == nil {
		s.mu.Unlock()
		return model.TimelineItem{}, util.ErrGoalNotFound
	}
	g.Timeline = append([]model.TimelineItem{item}, g.Timeline...)
	s.mu.Unlock()

	s.background("addTimelineItem", func(ctx context.Context) error {
		confirmed, err := s.backend.AddTimelineItem(ctx, goalID, item)
		if err != nil {
			return err
		}
		s.replace(goalID, confirmed)
		return nil
	})
	return item, nil
}

func (s *GoalService) UpdateTimelineItem(ctx context.Context, goalID, itemID string, patch repository.StepPatch) (model.TimelineItem, error) {
	s.mu.Lock()
	g := s.find(goalID)
	if g == nil {
		s.mu.Unlock()
		return model.TimelineItem{}, util.ErrGoalNotFound
	}
	var updated *model.TimelineItem
	for i := range g.Timeline {
		if g.Timeline[i].ID == itemID {
			applyTimelinePatch(&g.Timeline[i], patch)
			updated = &g.Timeline[i]
			break
		}
	}
	if updated == nil {
		s.mu.Unlock()
		return model.TimelineItem{}, util.ErrTimelineNotFound
	}
	snapshot := *updated
	s.mu.Unlock()

	s.background("updateTimelineItem", func(ctx context.Context) error {
		confirmed, err := s.backend.UpdateTimelineItem(ctx, goalID, itemID, patch)
		if err != nil {
			return err
		}
		s.replace(goalID, confirmed)
		return nil
	})
	return snapshot, nil
}

func (s *GoalService) DeleteTimelineItem(ctx context.Context, goalID, itemID string) error {
	s.mu.Lock()
	g := s.find(goalID)
	if g == nil {
		s.mu.Unlock()
		return util.ErrGoalNotFound
	}
	found := false
	for i := range g.Timeline {
		if g.Timeline[i].ID == itemID {
			g.Timeline = append(g.Timeline[:i], g.Timeline[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return util.ErrTimelineNotFound
	}

	s.background("deleteTimelineItem", func(ctx context.Context) error {
		confirmed, err := s.backend.DeleteTimelineItem(ctx, goalID, itemID)
		if err != nil {
			return err
		}
		s.replace(goalID, confirmed)
		return nil
	})
	return nil
}

// find and indexOf must be called with the lock held.
func (s *GoalService) find(id string) *model.Goal {
	if idx := s.indexOf(id); idx >= 0 {
		return s.goals[idx]
	}
	return nil
}

func (s *GoalService) indexOf(id string) int {
	for i, g := range s.goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// replace swaps the cache entry for id with the server-confirmed shape,
// keeping its position. If the entry disappeared in the meantime (a local
// delete won the race) the confirmation is dropped.
func (s *GoalService) replace(id string, confirmed *model.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.log.Debug("dropping confirmation for goal no longer cached", zap.String("goalID", id))
		return
	}
	s.goals[idx] = confirmed
}

// background runs one remote write detached from the caller's context so a
// closed request cannot abort a mutation the cache already applied.
func (s *GoalService) background(op string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), remoteWriteTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			monitoring.SyncOperations.WithLabelValues(op, "error").Inc()
			s.log.Error("remote goal write failed, optimistic state kept",
				zap.String("operation", op), zap.Error(err))
			s.mu.Lock()
			hook := s.onSyncError
			s.mu.Unlock()
			if hook != nil {
				hook(op, err)
			}
			return
		}
		monitoring.SyncOperations.WithLabelValues(op, "ok").Inc()
	}()
}

func applyGoalPatch(g *model.Goal, patch repository.GoalPatch) {
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.TargetDate != nil {
		g.TargetDate = patch.TargetDate
	}
	if patch.Completed != nil {
		g.Completed = *patch.Completed
	}
	if patch.CompletedAt != nil {
		g.CompletedAt = patch.CompletedAt
	}
	if patch.Pinned != nil {
		g.Pinned = *patch.Pinned
	}
	if patch.Theme != nil {
		g.Theme = *patch.Theme
	}
}

func applyStepPatch(m *model.Milestone, patch repository.StepPatch) {
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		m.ImageURL = *patch.ImageURL
	}
	if patch.ThumbnailURL != nil {
		m.ThumbnailURL = *patch.ThumbnailURL
	}
	if patch.IsSignificant != nil {
		m.IsSignificant = *patch.IsSignificant
	}
	if patch.Completed != nil {
		m.Completed = *patch.Completed
	}
}

func applyTimelinePatch(item *model.TimelineItem, patch repository.StepPatch) {
	m := model.Milestone(*item)
	applyStepPatch(&m, patch)
	*item = model.TimelineItem(m)
}
