package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/ideaforge/src/ranking"
	"github.com/stake-plus/ideaforge/src/tracker"
)

type Ideas struct {
	tracker *tracker.Client
}

func NewIdeas(tc *tracker.Client) Ideas {
	return Ideas{tracker: tc}
}

// List returns the open ideas ranked by Discord votes plus priority weight.
func (h Ideas) List(c *gin.Context) {
	count := 20
	if raw := c.Query("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			count = n
		}
	}

	ranked, err := ranking.TopIdeas(c.Request.Context(), h.tracker, count)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"err": "tracker unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ideas": ranked})
}

// SetPriority applies a P1..P5 label to an idea issue.
func (h Ideas) SetPriority(c *gin.Context) {
	var req struct {
		Issue int `json:"issue" binding:"required,min=1"`
		Level int `json:"level" binding:"required,min=1,max=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := h.tracker.SetPriorityLabel(c.Request.Context(), req.Issue, req.Level); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"err": "failed to set priority"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": req.Issue, "priority": req.Level})
}
