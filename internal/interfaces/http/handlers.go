package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/patlytics/patscope/internal/domain/quality"
	"github.com/patlytics/patscope/internal/domain/run"
	"github.com/patlytics/patscope/pkg/errors"
)

type handler struct {
	runs       run.Repository
	thresholds quality.Thresholds
	health     HealthChecker
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps application error codes onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.JSON(errors.HTTPStatusForCode(code), errorResponse{
		Code:    string(code),
		Message: err.Error(),
	})
}

func (h *handler) healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) listRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{
			Code:    string(errors.CodeServiceUnavailable),
			Message: "run store is not configured",
		})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{
				Code:    string(errors.CodeInvalidParam),
				Message: "limit must be a non-negative integer",
			})
			return
		}
		limit = parsed
	}

	records, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []*run.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": records, "count": len(records)})
}

func (h *handler) getRun(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{
			Code:    string(errors.CodeServiceUnavailable),
			Message: "run store is not configured",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    string(errors.CodeInvalidParam),
			Message: "run id must be a UUID",
		})
		return
	}

	record, err := h.runs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type scoreRequest struct {
	Counts     quality.Counts      `json:"counts"`
	Thresholds *quality.Thresholds `json:"thresholds,omitempty"`
}

// score evaluates the quality model against caller-supplied counts, with an
// optional threshold override for what-if analysis.
func (h *handler) score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    string(errors.CodeInvalidParam),
			Message: "invalid score request: " + err.Error(),
		})
		return
	}

	thresholds := h.thresholds
	if req.Thresholds != nil {
		thresholds = *req.Thresholds
	}

	result, err := quality.Score(req.Counts, thresholds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
