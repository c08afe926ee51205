package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainpipeline "github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
	pipelinesvc "github.com/MustafaBasol/crm-sub007/internal/service/pipeline"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

// Register mounts the pipeline routes on the /crm group.
func Register(rg *gin.RouterGroup, svc *pipelinesvc.Service) {
	rg.POST("/pipeline/bootstrap", bootstrap(svc))
	rg.GET("/pipeline", getPipeline(svc))
	rg.GET("/stages", listStages(svc))
}

func bootstrap(svc *pipelinesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := httpx.MustActor(c)
		if !a.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "only admins can bootstrap the pipeline"})
			return
		}

		res, err := svc.Bootstrap(c.Request.Context(), a.TenantID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func getPipeline(svc *pipelinesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := httpx.MustActor(c)
		p, err := svc.GetDefault(c.Request.Context(), a.TenantID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if p == nil {
			c.JSON(http.StatusOK, gin.H{"pipeline": nil, "stages": []domainpipeline.Stage{}})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func listStages(svc *pipelinesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := httpx.MustActor(c)
		stages, err := svc.ListStages(c.Request.Context(), a.TenantID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if stages == nil {
			stages = []domainpipeline.Stage{}
		}
		c.JSON(http.StatusOK, stages)
	}
}
