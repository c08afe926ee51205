package tenant

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tenantsvc "github.com/MustafaBasol/crm-sub007/internal/service/tenant"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

func Register(rg *gin.RouterGroup, svc *tenantsvc.Service) {
	rg.POST("", createTenant(svc))
	rg.GET("/:id", getTenant(svc))
}

type createTenantReq struct {
	Name string `json:"name" binding:"required"`
}

func createTenant(svc *tenantsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTenantReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		t, err := svc.Create(c.Request.Context(), req.Name)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

func getTenant(svc *tenantsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		t, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}
