package quote

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainquote "github.com/MustafaBasol/crm-sub007/internal/domain/quote"
	quotesvc "github.com/MustafaBasol/crm-sub007/internal/service/quote"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

func Register(rg *gin.RouterGroup, svc *quotesvc.Service) {
	rg.GET("", listQuotes(svc))
	rg.POST("", createQuote(svc))
}

type createQuoteReq struct {
	OpportunityID *uuid.UUID      `json:"opportunity_id"`
	AccountID     *uuid.UUID      `json:"account_id"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	ValidUntil    *string         `json:"valid_until"`
}

func createQuote(svc *quotesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createQuoteReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		q, err := svc.Create(c.Request.Context(), httpx.MustActor(c), domainquote.CreateInput{
			OpportunityID: req.OpportunityID,
			AccountID:     req.AccountID,
			Total:         req.Total,
			Currency:      req.Currency,
			ValidUntil:    req.ValidUntil,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, q)
	}
}

func listQuotes(svc *quotesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		quotes, err := svc.List(c.Request.Context(), httpx.MustActor(c).TenantID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if quotes == nil {
			quotes = []domainquote.Quote{}
		}
		c.JSON(http.StatusOK, quotes)
	}
}
