package controller

import (
	"errors"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
	"github.com/jcthewizard/Goalshare-sub000/internal/repository"
	"github.com/jcthewizard/Goalshare-sub000/internal/service"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// GoalController serves the goal cache. Reads come straight from memory;
// writes apply optimistically and return immediately.
type GoalController struct {
	GoalService       *service.GoalService
	CompletionService *service.CompletionService
	MediaService      *service.MediaService
}

func NewGoalController(goals *service.GoalService, completion *service.CompletionService, media *service.MediaService) *GoalController {
	return &GoalController{GoalService: goals, CompletionService: completion, MediaService: media}
}

// @Summary List goals
// @Description Returns the cached goals, pinned first, then by latest activity
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals [get]
func (c *GoalController) ListGoals(ctx *gin.Context) {
	util.Success(ctx, c.GoalService.Goals())
}

// @Summary Refresh goals
// @Description Replaces the cache with the backend's current state
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/refresh [post]
func (c *GoalController) RefreshGoals(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.GoalService.Refresh(ctx.Request.Context(), user.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, c.GoalService.Goals())
}

// @Summary Get a goal
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/{id} [get]
func (c *GoalController) GetGoal(ctx *gin.Context) {
	goal, err := c.GoalService.Get(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, goal)
}

// @Summary Create a goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goal body service.CreateGoalRequest true "New goal"
// @Success 201 {object} util.Response
// @Router /api/goals [post]
func (c *GoalController) CreateGoal(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateGoalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.Add(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, goal)
}

// @Summary Update a goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/{id} [patch]
func (c *GoalController) UpdateGoal(ctx *gin.Context) {
	var patch repository.GoalPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.Update(ctx.Request.Context(), ctx.Param("id"), patch)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, goal)
}

// @Summary Delete a goal
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/{id} [delete]
func (c *GoalController) DeleteGoal(ctx *gin.Context) {
	if err := c.GoalService.Remove(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Add a milestone
// @Description Adds a milestone; a local image URI is uploaded first
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param milestone body service.AddStepRequest true "New milestone"
// @Success 201 {object} util.Response
// @Router /api/goals/{id}/milestones [post]
func (c *GoalController) AddMilestone(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AddStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.resolveImage(ctx, user.UserID, "milestones", &req); err != nil {
		return
	}

	m, err := c.GoalService.AddMilestone(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Created(ctx, m)
}

// @Summary Update a milestone
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/{id}/milestones/{milestoneId} [patch]
func (c *GoalController) UpdateMilestone(ctx *gin.Context) {
	var patch repository.StepPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	m, err := c.GoalService.UpdateMilestone(ctx.Request.Context(), ctx.Param("id"), ctx.Param("milestoneId"), patch)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, m)
}

// @Summary Delete a milestone
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/{id}/milestones/{milestoneId} [delete]
func (c *GoalController) DeleteMilestone(ctx *gin.Context) {
	if err := c.GoalService.DeleteMilestone(ctx.Request.Context(), ctx.Param("id"), ctx.Param("milestoneId")); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Complete a milestone
// @Description Marks the milestone complete and publishes a feed update
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/{id}/milestones/{milestoneId}/complete [post]
func (c *GoalController) CompleteMilestone(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	author := model.UserInfo{ID: user.UserID, Name: user.Name}
	m, err := c.CompletionService.CompleteMilestone(ctx.Request.Context(), author, ctx.Param("id"), ctx.Param("milestoneId"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, m)
}

// @Summary Uncomplete a milestone
// @Description Clears the flag; the earlier feed update stays
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/{id}/milestones/{milestoneId}/uncomplete [post]
func (c *GoalController) UncompleteMilestone(ctx *gin.Context) {
	m, err := c.CompletionService.UncompleteMilestone(ctx.Request.Context(), ctx.Param("id"), ctx.Param("milestoneId"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, m)
}

// @Summary Add a timeline item
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body service.AddStepRequest true "New timeline item"
// @Success 201 {object} util.Response
// @Router /api/goals/{id}/timeline [post]
func (c *GoalController) AddTimelineItem(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AddStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.resolveImage(ctx, user.UserID, "timeline", &req); err != nil {
		return
	}

	item, err := c.GoalService.AddTimelineItem(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Created(ctx, item)
}

// @Summary Update a timeline item
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/{id}/timeline/{itemId} [patch]
func (c *GoalController) UpdateTimelineItem(ctx *gin.Context) {
	var patch repository.StepPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.GoalService.UpdateTimelineItem(ctx.Request.Context(), ctx.Param("id"), ctx.Param("itemId"), patch)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, item)
}

// @Summary Delete a timeline item
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/{id}/timeline/{itemId} [delete]
func (c *GoalController) DeleteTimelineItem(ctx *gin.Context) {
	if err := c.GoalService.DeleteTimelineItem(ctx.Request.Context(), ctx.Param("id"), ctx.Param("itemId")); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Complete a timeline item
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/{id}/timeline/{itemId}/complete [post]
func (c *GoalController) CompleteTimelineItem(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	author := model.UserInfo{ID: user.UserID, Name: user.Name}
	item, err := c.CompletionService.CompleteTimelineItem(ctx.Request.Context(), author, ctx.Param("id"), ctx.Param("itemId"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, item)
}

// resolveImage uploads a local image URI and rewrites the request to the
// stored URLs. Non-local URIs pass through untouched. Writes the HTTP error
// itself so callers can just return.
func (c *GoalController) resolveImage(ctx *gin.Context, userID, logicalPath string, req *service.AddStepRequest) error {
	if !service.IsLocalURI(req.ImageURL) {
		return nil
	}

	res, err := c.MediaService.Upload(ctx.Request.Context(), userID, req.ImageURL, logicalPath)
	if err != nil {
		if errors.Is(err, util.ErrEmptyImage) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return err
	}
	req.ImageURL = res.URL
	req.ThumbnailURL = res.ThumbnailURL
	return nil
}
