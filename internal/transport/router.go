package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MustafaBasol/crm-sub007/internal/domain/event"
	porteventbus "github.com/MustafaBasol/crm-sub007/internal/port/eventbus"
	portidem "github.com/MustafaBasol/crm-sub007/internal/port/idempotency"
	portnotifier "github.com/MustafaBasol/crm-sub007/internal/port/notifier"
	activitysvc "github.com/MustafaBasol/crm-sub007/internal/service/activity"
	autosvc "github.com/MustafaBasol/crm-sub007/internal/service/automation"
	contactsvc "github.com/MustafaBasol/crm-sub007/internal/service/contact"
	tasksvc "github.com/MustafaBasol/crm-sub007/internal/service/crmtask"
	leadsvc "github.com/MustafaBasol/crm-sub007/internal/service/lead"
	oppsvc "github.com/MustafaBasol/crm-sub007/internal/service/opportunity"
	pipelinesvc "github.com/MustafaBasol/crm-sub007/internal/service/pipeline"
	quotesvc "github.com/MustafaBasol/crm-sub007/internal/service/quote"
	salesvc "github.com/MustafaBasol/crm-sub007/internal/service/sale"
	tenantsvc "github.com/MustafaBasol/crm-sub007/internal/service/tenant"

	activityhandler "github.com/MustafaBasol/crm-sub007/internal/transport/activity"
	autohandler "github.com/MustafaBasol/crm-sub007/internal/transport/automation"
	contacthandler "github.com/MustafaBasol/crm-sub007/internal/transport/contact"
	taskhandler "github.com/MustafaBasol/crm-sub007/internal/transport/crmtask"
	leadhandler "github.com/MustafaBasol/crm-sub007/internal/transport/lead"
	opphandler "github.com/MustafaBasol/crm-sub007/internal/transport/opportunity"
	pipelinehandler "github.com/MustafaBasol/crm-sub007/internal/transport/pipeline"
	quotehandler "github.com/MustafaBasol/crm-sub007/internal/transport/quote"
	salehandler "github.com/MustafaBasol/crm-sub007/internal/transport/sale"
	tenanthandler "github.com/MustafaBasol/crm-sub007/internal/transport/tenant"
	wshandler "github.com/MustafaBasol/crm-sub007/internal/transport/ws"
)

// Services bundles the handlers' dependencies.
type Services struct {
	Tenants       *tenantsvc.Service
	Pipelines     *pipelinesvc.Service
	Opportunities *oppsvc.Service
	Tasks         *tasksvc.Service
	Activities    *activitysvc.Service
	Leads         *leadsvc.Service
	Contacts      *contactsvc.Service
	Automation    *autosvc.Service
	Quotes        *quotesvc.Service
	Sales         *salesvc.Service
}

type RouterConfig struct {
	Idempotency    portidem.Store
	IdempotencyTTL time.Duration
	EventBus       porteventbus.EventBus
	Notifier       portnotifier.TenantNotifier
	// MCP, when set, is served on /mcp.
	MCP http.Handler
}

func NewRouter(ctx context.Context, svcs Services, cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	api := r.Group("/api")

	// Tenant provisioning comes from the platform, before any user exists.
	tenanthandler.Register(api.Group("/tenants"), svcs.Tenants)

	scoped := api.Group("", ActorMiddleware(), IdempotencyMiddleware(cfg.Idempotency, cfg.IdempotencyTTL))

	crm := scoped.Group("/crm")
	pipelinehandler.Register(crm, svcs.Pipelines)
	opphandler.Register(crm, svcs.Opportunities)
	taskhandler.Register(crm.Group("/tasks"), svcs.Tasks)
	activityhandler.Register(crm.Group("/activities"), svcs.Activities)
	leadhandler.Register(crm.Group("/leads"), svcs.Leads)
	contacthandler.Register(crm.Group("/contacts"), svcs.Contacts)
	autohandler.Register(crm.Group("/automation"), svcs.Automation)

	quotehandler.Register(scoped.Group("/quotes"), svcs.Quotes)
	salehandler.Register(scoped.Group("/sales"), svcs.Sales)

	if cfg.MCP != nil {
		r.Any("/mcp", gin.WrapH(cfg.MCP))
	}

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	// One subscription per domain channel. The hub and the MCP registry
	// each filter by the event's tenant.
	for _, ch := range event.Channels {
		c := ch
		if _, err := cfg.EventBus.Subscribe(ctx, c, func(ctx context.Context, e event.Event) {
			hub.Broadcast(e)
			if cfg.Notifier == nil {
				return
			}
			if err := cfg.Notifier.NotifyTenant(ctx, e.TenantID, e); err != nil {
				slog.Warn("mcp notification failed", "tenant_id", e.TenantID, "type", e.Type, "error", err)
			}
		}); err != nil {
			slog.Error("failed to subscribe channel to event bridge", "channel", c, "error", err)
		}
	}

	return r
}
