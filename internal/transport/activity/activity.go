package activity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainactivity "github.com/MustafaBasol/crm-sub007/internal/domain/activity"
	activitysvc "github.com/MustafaBasol/crm-sub007/internal/service/activity"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

func Register(rg *gin.RouterGroup, svc *activitysvc.Service) {
	rg.GET("", listActivities(svc))
	rg.POST("", createActivity(svc))
	rg.PATCH("/:id", updateActivity(svc))
	rg.DELETE("/:id", deleteActivity(svc))
	rg.POST("/:id/complete", completeActivity(svc))
}

type createActivityReq struct {
	Type          domainactivity.Type `json:"type"`
	Title         string              `json:"title" binding:"required"`
	Notes         string              `json:"notes"`
	OpportunityID *uuid.UUID          `json:"opportunity_id"`
	AccountID     *uuid.UUID          `json:"account_id"`
	DueAt         *string             `json:"due_at"`
}

func createActivity(svc *activitysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createActivityReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		act, err := svc.Create(c.Request.Context(), httpx.MustActor(c), domainactivity.CreateInput{
			Type:          req.Type,
			Title:         req.Title,
			Notes:         req.Notes,
			OpportunityID: req.OpportunityID,
			AccountID:     req.AccountID,
			DueAt:         req.DueAt,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, act)
	}
}

func listActivities(svc *activitysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		oppID, ok := httpx.QueryID(c, "opportunityId")
		if !ok {
			return
		}
		accountID, ok := httpx.QueryID(c, "accountId")
		if !ok {
			return
		}

		acts, err := svc.List(c.Request.Context(), httpx.MustActor(c), oppID, accountID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if acts == nil {
			acts = []domainactivity.Activity{}
		}
		c.JSON(http.StatusOK, acts)
	}
}

func completeActivity(svc *activitysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		act, err := svc.Complete(c.Request.Context(), httpx.MustActor(c), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, act)
	}
}

type updateActivityReq struct {
	Type      *domainactivity.Type   `json:"type"`
	Title     *string                `json:"title"`
	Notes     httpx.Optional[string] `json:"notes"`
	DueAt     httpx.Optional[string] `json:"due_at"`
	Completed *bool                  `json:"completed"`
}

func updateActivity(svc *activitysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req updateActivityReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		act, err := svc.Update(c.Request.Context(), httpx.MustActor(c), id, domainactivity.UpdateInput{
			Type:       req.Type,
			Title:      req.Title,
			Notes:      httpx.PatchText(req.Notes),
			DueAt:      req.DueAt.Value,
			ClearDueAt: req.DueAt.Cleared(),
			Completed:  req.Completed,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, act)
	}
}

func deleteActivity(svc *activitysvc.Service) gin.HandlerFunc {
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
