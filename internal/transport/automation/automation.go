package automation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainauto "github.com/MustafaBasol/crm-sub007/internal/domain/automation"
	autosvc "github.com/MustafaBasol/crm-sub007/internal/service/automation"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

// Register mounts rule management and the manual scan triggers on the
// /crm/automation group.
func Register(rg *gin.RouterGroup, svc *autosvc.Service) {
	rg.GET("/rules", listRules(svc))
	rg.POST("/rules", createRule(svc))
	rg.GET("/rules/:id", getRule(svc))
	rg.PATCH("/rules/:id", updateRule(svc))

	rg.POST("/run", run(svc, nil))
	rg.POST("/run/stale-deals", run(svc, kindPtr(domainauto.KindStaleDeal)))
	rg.POST("/run/overdue-tasks", run(svc, kindPtr(domainauto.KindOverdueTask)))
}

func kindPtr(k domainauto.Kind) *domainauto.Kind { return &k }

func listRules(svc *autosvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var kind *domainauto.Kind
		if v := c.Query("kind"); v != "" {
			k, err := domainauto.ParseKind(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			kind = &k
		}

		rules, err := svc.ListRules(c.Request.Context(), httpx.MustActor(c), kind)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if rules == nil {
			rules = []domainauto.Rule{}
		}
		c.JSON(http.StatusOK, rules)
	}
}

func createRule(svc *autosvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in domainauto.RuleInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if v := c.Query("kind"); v != "" && in.Kind == "" {
			in.Kind = domainauto.Kind(v)
		}

		r, err := svc.CreateRule(c.Request.Context(), httpx.MustActor(c), in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

func getRule(svc *autosvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		r, err := svc.GetRule(c.Request.Context(), httpx.MustActor(c), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func updateRule(svc *autosvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var in domainauto.RuleInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		r, err := svc.UpdateRule(c.Request.Context(), httpx.MustActor(c), id, in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func run(svc *autosvc.Service, kind *domainauto.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Run(c.Request.Context(), httpx.MustActor(c), kind)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
