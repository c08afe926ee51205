package sale

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainsale "github.com/MustafaBasol/crm-sub007/internal/domain/sale"
	salesvc "github.com/MustafaBasol/crm-sub007/internal/service/sale"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

func Register(rg *gin.RouterGroup, svc *salesvc.Service) {
	rg.GET("", listSales(svc))
	rg.POST("", createSale(svc))
}

type createSaleReq struct {
	OpportunityID *uuid.UUID      `json:"opportunity_id"`
	QuoteID       *uuid.UUID      `json:"quote_id"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	SoldAt        *time.Time      `json:"sold_at"`
}

func createSale(svc *salesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSaleReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sl, err := svc.Create(c.Request.Context(), httpx.MustActor(c), domainsale.CreateInput{
			OpportunityID: req.OpportunityID,
			QuoteID:       req.QuoteID,
			Total:         req.Total,
			Currency:      req.Currency,
			SoldAt:        req.SoldAt,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, sl)
	}
}

func listSales(svc *salesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sales, err := svc.List(c.Request.Context(), httpx.MustActor(c).TenantID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if sales == nil {
			sales = []domainsale.Sale{}
		}
		c.JSON(http.StatusOK, sales)
	}
}
