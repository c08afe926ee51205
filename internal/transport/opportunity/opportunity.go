package opportunity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	oppsvc "github.com/MustafaBasol/crm-sub007/internal/service/opportunity"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

// Register mounts the board and opportunity routes on the /crm group.
func Register(rg *gin.RouterGroup, svc *oppsvc.Service) {
	rg.GET("/board", getBoard(svc))
	rg.GET("/board/export", exportBoard(svc))

	opps := rg.Group("/opportunities")
	opps.POST("", createOpportunity(svc))
	opps.GET("/:id", getOpportunity(svc))
	opps.PATCH("/:id", updateOpportunity(svc))
	opps.POST("/:id/move", moveOpportunity(svc))
	opps.PUT("/:id/team", setTeam(svc))
	opps.GET("/:id/history", listHistory(svc))
}

type createOpportunityReq struct {
	Name              string           `json:"name" binding:"required"`
	AccountID         *uuid.UUID       `json:"account_id"`
	StageID           *uuid.UUID       `json:"stage_id"`
	Amount            *decimal.Decimal `json:"amount"`
	Currency          string           `json:"currency"`
	Probability       *decimal.Decimal `json:"probability"`
	ExpectedCloseDate *string          `json:"expected_close_date"`
	TeamUserIDs       []uuid.UUID      `json:"team_user_ids"`
}

func createOpportunity(svc *oppsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOpportunityReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		v, err := svc.Create(c.Request.Context(), httpx.MustActor(c), domainopp.CreateInput{
			Name:              req.Name,
			AccountID:         req.AccountID,
			StageID:           req.StageID,
			Amount:            req.Amount,
			Currency:          req.Currency,
			Probability:       req.Probability,
			ExpectedCloseDate: req.ExpectedCloseDate,
			TeamUserIDs:       req.TeamUserIDs,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, v)
	}
}

func getOpportunity(svc *oppsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		v, err := svc.Get(c.Request.Context(), httpx.MustActor(c), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// updateOpportunityReq uses Optional for the clearable fields so that an
// explicit null clears while an absent key leaves the value alone.
type updateOpportunityReq struct {
	Name              *string                         `json:"name"`
	AccountID         httpx.Optional[uuid.UUID]       `json:"account_id"`
	Amount            *decimal.Decimal                `json:"amount"`
	Currency          *string                         `json:"currency"`
	Probability       httpx.Optional[decimal.Decimal] `json:"probability"`
	ExpectedCloseDate httpx.Optional[string]          `json:"expected_close_date"`
	LostReason        *string                         `json:"lost_reason"`
}

func (r updateOpportunityReq) input() domainopp.UpdateInput {
	return domainopp.UpdateInput{
		Name:                   r.Name,
		AccountID:              r.AccountID.Value,
		ClearAccount:           r.AccountID.Cleared(),
		Amount:                 r.Amount,
		Currency:               r.Currency,
		Probability:            r.Probability.Value,
		ClearProbability:       r.Probability.Cleared(),
		ExpectedCloseDate:      r.ExpectedCloseDate.Value,
		ClearExpectedCloseDate: r.ExpectedCloseDate.Cleared(),
		LostReason:             r.LostReason,
	}
}

func updateOpportunity(svc *oppsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req updateOpportunityReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		v, err := svc.Update(c.Request.Context(), httpx.MustActor(c), id, req.input())
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

type moveReq struct {
	StageID uuid.UUID `json:"stage_id" binding:"required"`
}

func moveOpportunity(svc *oppsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req moveReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		v, err := svc.Move(c.Request.Context(), httpx.MustActor(c), id, req.StageID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

type setTeamReq struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required"`
}

func setTeam(svc *oppsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req setTeamReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		team, err := svc.SetTeam(c.Request.Context(), httpx.MustActor(c), id, req.UserIDs)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, team)
	}
}

func listHistory(svc *oppsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		rows, err := svc.History(c.Request.Context(), httpx.MustActor(c), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if rows == nil {
			rows = []domainopp.StageHistory{}
		}
		c.JSON(http.StatusOK, rows)
	}
}

func getBoard(svc *oppsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svc.Board(c.Request.Context(), httpx.MustActor(c))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}
