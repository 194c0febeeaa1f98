// internal/api/handlers/deploy_handler.go
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/andresuchdata/sitedeploy/internal/domain"
	"github.com/andresuchdata/sitedeploy/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Deployer runs one deploy invocation.
type Deployer interface {
	Run(ctx context.Context, event domain.Event) (domain.Result, error)
}

type DeployHandler struct {
	deployer Deployer
}

func NewDeployHandler(deployer Deployer) *DeployHandler {
	return &DeployHandler{deployer: deployer}
}

// Deploy runs an invocation with the request body as the event. An empty
// body is an event without a pipeline job.
func (h *DeployHandler) Deploy(c *gin.Context) {
	var event domain.Event
	if err := c.ShouldBindJSON(&event); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
		return
	}

	result, err := h.deployer.Run(c.Request.Context(), event)
	if err != nil {
		logger.Log.Error().Err(err).Msg("deploy invocation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(result.StatusCode, result)
}
