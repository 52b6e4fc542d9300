package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/config"
	"github.com/jcthewizard/Goalshare-sub000/internal/middleware"
	"github.com/jcthewizard/Goalshare-sub000/internal/model"
	"github.com/jcthewizard/Goalshare-sub000/internal/repository"
	"github.com/jcthewizard/Goalshare-sub000/internal/service"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// echoBackend confirms every mutation with the shape it was handed.
type echoBackend struct{}

func (echoBackend) FetchAll(ctx context.Context, ownerID string) ([]model.Goal, error) {
	return nil, nil
}

func (echoBackend) Create(ctx context.Context, goal *model.Goal) (*model.Goal, error) {
	g := *goal
	return &g, nil
}

func (echoBackend) Update(ctx context.Context, id string, patch repository.GoalPatch) (*model.Goal, error) {
	return &model.Goal{ID: id}, nil
}

func (echoBackend) Delete(ctx context.Context, id string) error { return nil }

func (echoBackend) AddMilestone(ctx context.Context, goalID string, m model.Milestone) (*model.Goal, error) {
	return &model.Goal{ID: goalID, Milestones: []model.Milestone{m}}, nil
}

func (echoBackend) UpdateMilestone(ctx context.Context, goalID, milestoneID string, patch repository.StepPatch) (*model.Goal, error) {
	return &model.Goal{ID: goalID}, nil
}

func (echoBackend) DeleteMilestone(ctx context.Context, goalID, milestoneID string) (*model.Goal, error) {
	return &model.Goal{ID: goalID}, nil
}

func (echoBackend) AddTimelineItem(ctx context.Context, goalID string, item model.TimelineItem) (*model.Goal, error) {
	return &model.Goal{ID: goalID, Timeline: []model.TimelineItem{item}}, nil
}

func (echoBackend) UpdateTimelineItem(ctx context.Context, goalID, itemID string, patch repository.StepPatch) (*model.Goal, error) {
	return &model.Goal{ID: goalID}, nil
}

func (echoBackend) DeleteTimelineItem(ctx context.Context, goalID, itemID string) (*model.Goal, error) {
	return &model.Goal{ID: goalID}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.GoalService, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"

	goalSvc := service.NewGoalService(echoBackend{}, zap.NewNop())

	storageCfg := &config.StorageConfig{Type: "local", LocalPath: t.TempDir()}
	storage := &service.StorageService{Provider: &service.LocalStorageProvider{Config: storageCfg}}
	media := service.NewMediaService(storage, storageCfg, zap.NewNop())

	kv, err := repository.NewFileKV(t.TempDir())
	require.NoError(t, err)
	social := service.NewSocialService(kv, repository.NewRESTUserDirectory("http://127.0.0.1:1", ""), zap.NewNop())
	completion := service.NewCompletionService(goalSvc, social, 0, zap.NewNop())

	ctrl := NewGoalController(goalSvc, completion, media)

	router := gin.New()
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	api.GET("/goals", ctrl.ListGoals)
	api.POST("/goals", ctrl.CreateGoal)
	api.POST("/goals/:id/timeline", ctrl.AddTimelineItem)

	token, err := util.GenerateJWT(model.UserInfo{ID: "u1", Name: "Me"}, cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)
	return router, goalSvc, token
}

func TestListGoalsRequiresAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateThenListGoals(t *testing.T) {
	router, goalSvc, token := newTestRouter(t)

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"title":"Learn Go"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/goals", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	goalSvc.Flush()

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Code int          `json:"code"`
		Data []model.Goal `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusOK, envelope.Code)
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Learn Go", envelope.Data[0].Title)
	assert.Equal(t, "u1", envelope.Data[0].UserID)
}

func TestAddTimelineItemResolvesLocalImage(t *testing.T) {
	router, goalSvc, token := newTestRouter(t)

	goal, err := goalSvc.Add(context.Background(), "u1", service.CreateGoalRequest{Title: "Learn Guitar"})
	require.NoError(t, err)
	goalSvc.Flush()

	capture := filepath.Join(t.TempDir(), "capture.jpg")
	require.NoError(t, os.WriteFile(capture, []byte("jpeg-bytes"), 0644))

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"title":"First chord","imageUrl":"file://` + capture + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/goals/"+goal.ID+"/timeline", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	cached, err := goalSvc.Get(goal.ID)
	require.NoError(t, err)
	require.Len(t, cached.Timeline, 1)
	assert.True(t, strings.HasPrefix(cached.Timeline[0].ImageURL, "/uploads/u1/timeline/"),
		"local capture must be rewritten to a storage URL, got %q", cached.Timeline[0].ImageURL)
	assert.False(t, service.IsLocalURI(cached.Timeline[0].ImageURL))
	goalSvc.Flush()
}

func TestCreateGoalMissingTitle(t *testing.T) {
	router, _, token := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/goals", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
