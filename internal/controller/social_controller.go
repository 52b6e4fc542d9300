package controller

import (
	"errors"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
	"github.com/jcthewizard/Goalshare-sub000/internal/service"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

type SocialController struct {
	SocialService *service.SocialService
}

func NewSocialController(social *service.SocialService) *SocialController {
	return &SocialController{SocialService: social}
}

type sendRequestBody struct {
	RecipientID string `json:"recipientId" binding:"required"`
}

type addCommentBody struct {
	Text string `json:"text" binding:"required,max=1000"`
}

// @Summary List friends
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/social/friends [get]
func (c *SocialController) ListFriends(ctx *gin.Context) {
	util.Success(ctx, c.SocialService.Friends())
}

// @Summary Remove a friend
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/social/friends/{userId} [delete]
func (c *SocialController) RemoveFriend(ctx *gin.Context) {
	if err := c.SocialService.RemoveFriend(ctx.Request.Context(), ctx.Param("userId")); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary List friend requests
// @Description Returns incoming and outgoing pending requests
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/social/requests [get]
func (c *SocialController) ListRequests(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"incoming": c.SocialService.IncomingRequests(),
		"outgoing": c.SocialService.OutgoingRequests(),
	})
}

// @Summary Send a friend request
// @Tags social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Router /api/social/requests [post]
func (c *SocialController) SendRequest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var body sendRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sender := model.UserInfo{ID: user.UserID, Name: user.Name}
	req, err := c.SocialService.SendFriendRequest(ctx.Request.Context(), sender, body.RecipientID)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, req)
}

// @Summary Accept a friend request
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/social/requests/{id}/accept [post]
func (c *SocialController) AcceptRequest(ctx *gin.Context) {
	friend, err := c.SocialService.AcceptFriendRequest(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, friend)
}

// @Summary Decline a friend request
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/social/requests/{id}/decline [post]
func (c *SocialController) DeclineRequest(ctx *gin.Context) {
	if err := c.SocialService.DeclineFriendRequest(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Search users
// @Description Excludes the caller, existing friends, and pending targets
// @Tags social
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text"
// @Success 200 {object} util.Response
// @Router /api/social/users/search [get]
func (c *SocialController) SearchUsers(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	users, err := c.SocialService.SearchUsers(ctx.Request.Context(), user.UserID, ctx.Query("q"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// @Summary Get the activity feed
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/social/feed [get]
func (c *SocialController) GetFeed(ctx *gin.Context) {
	util.Success(ctx, c.SocialService.Feed())
}

// @Summary Like a feed update
// @Description Idempotent: liking twice counts once
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/social/feed/{id}/like [post]
func (c *SocialController) LikeUpdate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.SocialService.Like(ctx.Request.Context(), ctx.Param("id"), user.UserID); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Unlike a feed update
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/social/feed/{id}/unlike [post]
func (c *SocialController) UnlikeUpdate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.SocialService.Unlike(ctx.Request.Context(), ctx.Param("id"), user.UserID); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Comment on a feed update
// @Tags social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Router /api/social/feed/{id}/comments [post]
func (c *SocialController) AddComment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var body addCommentBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	author := model.UserInfo{ID: user.UserID, Name: user.Name}
	comment, err := c.SocialService.AddComment(ctx.Request.Context(), ctx.Param("id"), author, body.Text)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Created(ctx, comment)
}

// @Summary Delete a comment
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/social/feed/{id}/comments/{commentId} [delete]
func (c *SocialController) DeleteComment(ctx *gin.Context) {
	err := c.SocialService.DeleteComment(ctx.Request.Context(), ctx.Param("id"), ctx.Param("commentId"))
	if err != nil {
		if errors.Is(err, util.ErrCommentNotFound) || errors.Is(err, util.ErrUpdateNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
