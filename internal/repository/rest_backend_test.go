package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeGoalAPI(t *testing.T) (*gin.Engine, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return router, srv
}

func TestRESTFetchAllTranslatesUnderscoreID(t *testing.T) {
	router, srv := newFakeGoalAPI(t)
	router.GET("/goals", func(c *gin.Context) {
		assert.Equal(t, "u1", c.Query("userId"))
		assert.Equal(t, "Bearer tok", c.GetHeader("Authorization"))
		c.JSON(http.StatusOK, []gin.H{{
			"_id":       "abc123",
			"userId":    "u1",
			"title":     "Ship the app",
			"createdAt": time.Now().UTC().Format(time.RFC3339),
			"milestones": []gin.H{{
				"_id":   "m1",
				"title": "Beta build",
			}},
			"timeline": []gin.H{},
		}})
	})

	backend := NewRESTBackend(srv.URL, "tok")
	goals, err := backend.FetchAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "abc123", goals[0].ID)
	require.Len(t, goals[0].Milestones, 1)
	assert.Equal(t, "m1", goals[0].Milestones[0].ID)
}

func TestRESTFetchAllSuppliesDefaults(t *testing.T) {
	router, srv := newFakeGoalAPI(t)
	router.GET("/goals", func(c *gin.Context) {
		// A bare document: no title, no slices, no theme.
		c.JSON(http.StatusOK, []gin.H{{"_id": "bare"}})
	})

	backend := NewRESTBackend(srv.URL, "")
	goals, err := backend.FetchAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)

	g := goals[0]
	assert.Equal(t, "Untitled Goal", g.Title)
	assert.NotNil(t, g.Milestones)
	assert.NotNil(t, g.Timeline)
	assert.NotEmpty(t, g.Theme.Primary)
	assert.False(t, g.CreatedAt.IsZero())
}

func TestRESTCreateReturnsServerShape(t *testing.T) {
	router, srv := newFakeGoalAPI(t)
	router.POST("/goals", func(c *gin.Context) {
		var body map[string]interface{}
		require.NoError(t, c.ShouldBindJSON(&body))
		assert.Equal(t, "New goal", body["title"])
		c.JSON(http.StatusCreated, gin.H{
			"_id":        "server-id",
			"title":      "New goal",
			"milestones": []gin.H{},
			"timeline":   []gin.H{},
			"createdAt":  time.Now().UTC().Format(time.RFC3339),
		})
	})

	backend := NewRESTBackend(srv.URL, "")
	goal := model.Goal{ID: "tmp", UserID: "u1", Title: "New goal", CreatedAt: time.Now()}
	created, err := backend.Create(context.Background(), &goal)
	require.NoError(t, err)
	assert.Equal(t, "server-id", created.ID)
}

func TestRESTMilestoneRoutesAreNested(t *testing.T) {
	router, srv := newFakeGoalAPI(t)
	router.PUT("/goals/:id/milestones/:mid", func(c *gin.Context) {
		assert.Equal(t, "g1", c.Param("id"))
		assert.Equal(t, "m1", c.Param("mid"))
		c.JSON(http.StatusOK, gin.H{"_id": "g1", "milestones": []gin.H{{"_id": "m1", "completed": true}}})
	})

	backend := NewRESTBackend(srv.URL, "")
	completed := true
	goal, err := backend.UpdateMilestone(context.Background(), "g1", "m1", StepPatch{Completed: &completed})
	require.NoError(t, err)
	require.Len(t, goal.Milestones, 1)
	assert.True(t, goal.Milestones[0].Completed)
}

func TestRESTNotFound(t *testing.T) {
	_, srv := newFakeGoalAPI(t)

	backend := NewRESTBackend(srv.URL, "")
	_, err := backend.Update(context.Background(), "missing", GoalPatch{})
	assert.ErrorIs(t, err, util.ErrGoalNotFound)
}

func TestRESTServerErrorWrapsFetchFailed(t *testing.T) {
	router, srv := newFakeGoalAPI(t)
	router.GET("/goals", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	backend := NewRESTBackend(srv.URL, "")
	_, err := backend.FetchAll(context.Background(), "u1")
	assert.ErrorIs(t, err, util.ErrFetchFailed)
}

func TestRESTUnreachableHostWrapsFetchFailed(t *testing.T) {
	backend := NewRESTBackend("http://127.0.0.1:1", "")
	_, err := backend.FetchAll(context.Background(), "u1")
	assert.ErrorIs(t, err, util.ErrFetchFailed)
}
