package lead

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainlead "github.com/MustafaBasol/crm-sub007/internal/domain/lead"
	"github.com/MustafaBasol/crm-sub007/internal/domain/party"
	leadsvc "github.com/MustafaBasol/crm-sub007/internal/service/lead"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

func Register(rg *gin.RouterGroup, svc *leadsvc.Service) {
	rg.GET("", listLeads(svc))
	rg.POST("", createLead(svc))
	rg.PATCH("/:id", updateLead(svc))
	rg.DELETE("/:id", deleteLead(svc))
}

func listLeads(svc *leadsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		leads, err := svc.List(c.Request.Context(), httpx.MustActor(c))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, leads)
	}
}

type createLeadReq struct {
	Name    string  `json:"name" binding:"required"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Status  *string `json:"status"`
}

func createLead(svc *leadsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createLeadReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		l, err := svc.Create(c.Request.Context(), httpx.MustActor(c), domainlead.CreateInput{
			Name:    req.Name,
			Details: party.Details{Email: req.Email, Phone: req.Phone, Company: req.Company},
			Status:  req.Status,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, l)
	}
}

type updateLeadReq struct {
	Name    *string                `json:"name"`
	Email   httpx.Optional[string] `json:"email"`
	Phone   httpx.Optional[string] `json:"phone"`
	Company httpx.Optional[string] `json:"company"`
	Status  httpx.Optional[string] `json:"status"`
}

func updateLead(svc *leadsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req updateLeadReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		l, err := svc.Update(c.Request.Context(), httpx.MustActor(c), id, domainlead.UpdateInput{
			Name: req.Name,
			Details: party.Patch{
				Email:   httpx.PatchText(req.Email),
				Phone:   httpx.PatchText(req.Phone),
				Company: httpx.PatchText(req.Company),
			},
			Status: httpx.PatchText(req.Status),
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, l)
	}
}

func deleteLead(svc *leadsvc.Service) gin.HandlerFunc {
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
