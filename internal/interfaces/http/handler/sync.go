package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estatedesk/backend/internal/application/syncapp"
	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
	"github.com/estatedesk/backend/internal/interfaces/http/dto"
	"github.com/estatedesk/backend/internal/interfaces/http/middleware"
)

// SyncHandler exposes the reconciliation pipeline: manual trigger, status,
// run history, and deletion recovery.
type SyncHandler struct {
	BaseHandler
	orchestrator *syncapp.Orchestrator
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(orchestrator *syncapp.Orchestrator) *SyncHandler {
	return &SyncHandler{orchestrator: orchestrator}
}

// SyncRunResponse is the read model for one orchestration pass
type SyncRunResponse struct {
	ID           uuid.UUID                                        `json:"id"`
	Trigger      string                                           `json:"trigger"`
	Status       string                                           `json:"status"`
	StartedAt    time.Time                                        `json:"started_at"`
	FinishedAt   *time.Time                                       `json:"finished_at"`
	Counts       map[syncdomain.RecordKind]*syncdomain.KindCounts `json:"counts"`
	ItemErrors   []syncdomain.ItemError                           `json:"item_errors,omitempty"`
	ManualReview []syncdomain.ManualReviewItem                    `json:"manual_review,omitempty"`
}

func toSyncRunResponse(run *syncdomain.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:           run.ID,
		Trigger:      string(run.Trigger),
		Status:       string(run.Status),
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		Counts:       run.Counts,
		ItemErrors:   run.ItemErrors,
		ManualReview: run.ManualReview,
	}
}

// SyncStatusResponse reports pipeline liveness and the last finished run
type SyncStatusResponse struct {
	InProgress bool             `json:"in_progress"`
	LastRun    *SyncRunResponse `json:"last_run,omitempty"`
}

// RecoverRequest identifies the soft-deleted record to restore
type RecoverRequest struct {
	Kind  string `json:"kind" binding:"required,oneof=seller buyer"`
	Key   string `json:"key" binding:"required,min=1,max=20"`
	Actor string `json:"actor" binding:"required,min=1,max=100"`
}

// Trigger starts a manual reconciliation pass and waits for it to finish.
// A pass already in progress yields 409; concurrent triggers are rejected,
// never queued.
func (h *SyncHandler) Trigger(c *gin.Context) {
	run, err := h.orchestrator.RunFull(c.Request.Context(), syncdomain.TriggerManual)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSyncRunResponse(run))
}

// Status reports whether a pass is running and summarizes the latest run
func (h *SyncHandler) Status(c *gin.Context) {
	inProgress, last, err := h.orchestrator.Status(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := SyncStatusResponse{InProgress: inProgress}
	if last != nil {
		runResp := toSyncRunResponse(last)
		resp.LastRun = &runResp
	}
	h.Success(c, resp)
}

// History lists recent runs, newest first
func (h *SyncHandler) History(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	runs, err := h.orchestrator.History(c.Request.Context(), req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	responses := make([]SyncRunResponse, 0, len(runs))
	for i := range runs {
		responses = append(responses, toSyncRunResponse(&runs[i]))
	}
	h.Success(c, responses)
}

// Recover restores the most recent recoverable deletion for a business key
func (h *SyncHandler) Recover(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err := h.orchestrator.Recover(
		c.Request.Context(),
		syncdomain.RecordKind(req.Kind),
		req.Key,
		req.Actor,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"kind": req.Kind, "key": req.Key, "recovered": true})
}

// RegisterRoutes registers sync endpoints on the given router group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/runs", h.Trigger)
		sync.GET("/status", h.Status)
		sync.GET("/runs", h.History)
		sync.POST("/recover", h.Recover)
	}
}
