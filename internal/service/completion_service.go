package service

import (
	"context"
	"sync"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
	"github.com/jcthewizard/Goalshare-sub000/internal/repository"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"
	"github.com/jcthewizard/Goalshare-sub000/pkg/monitoring"

	"go.uber.org/zap"
)

// CompletionService is the only bridge between the goal cache and the social
// feed. Completing a milestone marks it complete optimistically and, after a
// short celebration delay, publishes exactly one feed update. The guard runs
// under the coordinator's own lock so two rapid completions of the same
// milestone still fan out once.
type CompletionService struct {
	goals  *GoalService
	social *SocialService
	log    *zap.Logger
	delay  time.Duration

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewCompletionService wires the coordinator. delay is how long the feed
// update lags the completion; tests pass 0.
func NewCompletionService(goals *GoalService, social *SocialService, delay time.Duration, log *zap.Logger) *CompletionService {
	return &CompletionService{goals: goals, social: social, delay: delay, log: log}
}

// Flush blocks until every scheduled fan-out has run. Called on shutdown and
// by tests.
func (s *CompletionService) Flush() {
	s.wg.Wait()
}

// CompleteMilestone marks the milestone complete and schedules the feed
// update. Completing an already-complete milestone is a no-op: no second
// feed update, no second write.
func (s *CompletionService) CompleteMilestone(ctx context.Context, author model.UserInfo, goalID, milestoneID string) (model.Milestone, error) {
	s.mu.Lock()
	goal, err := s.goals.Get(goalID)
	if err != nil {
		s.mu.Unlock()
		return model.Milestone{}, err
	}
	var target *model.Milestone
	for i := range goal.Milestones {
		if goal.Milestones[i].ID == milestoneID {
			target = &goal.Milestones[i]
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return model.Milestone{}, util.ErrMilestoneNotFound
	}
	if target.Completed {
		s.mu.Unlock()
		return *target, nil
	}

	completed := true
	m, err := s.goals.UpdateMilestone(ctx, goalID, milestoneID, repository.StepPatch{Completed: &completed})
	s.mu.Unlock()
	if err != nil {
		return model.Milestone{}, err
	}

	s.scheduleFanout(author, goal.Title, goalID, m)
	return m, nil
}

// CompleteTimelineItem behaves like CompleteMilestone for significant
// timeline entries; non-significant entries complete without a feed update.
func (s *CompletionService) CompleteTimelineItem(ctx context.Context, author model.UserInfo, goalID, itemID string) (model.TimelineItem, error) {
	s.mu.Lock()
	goal, err := s.goals.Get(goalID)
	if err != nil {
		s.mu.Unlock()
		return model.TimelineItem{}, err
	}
	var target *model.TimelineItem
	for i := range goal.Timeline {
		if goal.Timeline[i].ID == itemID {
			target = &goal.Timeline[i]
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return model.TimelineItem{}, util.ErrTimelineNotFound
	}
	if target.Completed {
		s.mu.Unlock()
		return *target, nil
	}

	completed := true
	item, err := s.goals.UpdateTimelineItem(ctx, goalID, itemID, repository.StepPatch{Completed: &completed})
	s.mu.Unlock()
	if err != nil {
		return model.TimelineItem{}, err
	}

	if item.IsSignificant {
		s.scheduleFanout(author, goal.Title, goalID, model.Milestone(item))
	}
	return item, nil
}

// UncompleteMilestone clears the flag. The feed update published at
// completion time is never retracted.
func (s *CompletionService) UncompleteMilestone(ctx context.Context, goalID, milestoneID string) (model.Milestone, error) {
	completed := false
	return s.goals.UpdateMilestone(ctx, goalID, milestoneID, repository.StepPatch{Completed: &completed})
}

func (s *CompletionService) UncompleteTimelineItem(ctx context.Context, goalID, itemID string) (model.TimelineItem, error) {
	completed := false
	return s.goals.UpdateTimelineItem(ctx, goalID, itemID, repository.StepPatch{Completed: &completed})
}

func (s *CompletionService) scheduleFanout(author model.UserInfo, goalTitle, goalID string, m model.Milestone) {
	update := model.FeedUpdate{
		ID:             model.GenerateID(),
		AuthorID:       author.ID,
		AuthorName:     author.Name,
		GoalID:         goalID,
		GoalTitle:      goalTitle,
		MilestoneID:    m.ID,
		MilestoneTitle: m.Title,
		Description:    m.Description,
		ImageURL:       m.ImageURL,
		ThumbnailURL:   m.ThumbnailURL,
		Likes:          []string{},
		Comments:       []model.Comment{},
		CreatedAt:      time.Now(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
		s.social.AppendFeedUpdate(context.Background(), update)
		monitoring.FeedFanout.Inc()
		s.log.Debug("published completion to feed",
			zap.String("goalID", goalID), zap.String("milestoneID", m.ID))
	}()
}
