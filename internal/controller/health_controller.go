package controller

import (
	"errors"

	"github.com/jcthewizard/Goalshare-sub000/internal/repository"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	KV repository.KVStore
}

func NewHealthController(kv repository.KVStore) *HealthController {
	return &HealthController{KV: kv}
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	storage := "up"
	if _, err := c.KV.Get(ctx.Request.Context(), "health:probe"); err != nil && !errors.Is(err, repository.ErrKeyNotFound) {
		storage = "down"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"storage": storage,
		},
	})
}
