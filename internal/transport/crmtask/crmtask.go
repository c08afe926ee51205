package crmtask

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	tasksvc "github.com/MustafaBasol/crm-sub007/internal/service/crmtask"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

func Register(rg *gin.RouterGroup, svc *tasksvc.Service) {
	rg.GET("", listTasks(svc))
	rg.POST("", createTask(svc))
	rg.PATCH("/:id", updateTask(svc))
	rg.DELETE("/:id", deleteTask(svc))
}

type createTaskReq struct {
	Title          string     `json:"title" binding:"required"`
	OpportunityID  *uuid.UUID `json:"opportunity_id"`
	AccountID      *uuid.UUID `json:"account_id"`
	DueAt          *string    `json:"due_at"`
	Completed      bool       `json:"completed"`
	AssigneeUserID *uuid.UUID `json:"assignee_user_id"`
}

func createTask(svc *tasksvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTaskReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		t, err := svc.Create(c.Request.Context(), httpx.MustActor(c), domaintask.CreateInput{
			Title:          req.Title,
			OpportunityID:  req.OpportunityID,
			AccountID:      req.AccountID,
			DueAt:          req.DueAt,
			Completed:      req.Completed,
			AssigneeUserID: req.AssigneeUserID,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

func listTasks(svc *tasksvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		oppID, ok := httpx.QueryID(c, "opportunityId")
		if !ok {
			return
		}
		accountID, ok := httpx.QueryID(c, "accountId")
		if !ok {
			return
		}

		tasks, err := svc.List(c.Request.Context(), httpx.MustActor(c), oppID, accountID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if tasks == nil {
			tasks = []domaintask.Task{}
		}
		c.JSON(http.StatusOK, tasks)
	}
}

type updateTaskReq struct {
	Title          *string                   `json:"title"`
	DueAt          httpx.Optional[string]    `json:"due_at"`
	Completed      *bool                     `json:"completed"`
	AssigneeUserID httpx.Optional[uuid.UUID] `json:"assignee_user_id"`
}

func updateTask(svc *tasksvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req updateTaskReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		t, err := svc.Update(c.Request.Context(), httpx.MustActor(c), id, domaintask.UpdateInput{
			Title:          req.Title,
			DueAt:          req.DueAt.Value,
			ClearDueAt:     req.DueAt.Cleared(),
			Completed:      req.Completed,
			AssigneeUserID: req.AssigneeUserID.Value,
			ClearAssignee:  req.AssigneeUserID.Cleared(),
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

func deleteTask(svc *tasksvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		if err := svc.Delete(c.Request.Context(), httpx.MustActor(c), id); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
