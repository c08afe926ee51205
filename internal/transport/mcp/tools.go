package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	domainauto "github.com/MustafaBasol/crm-sub007/internal/domain/automation"
	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	autosvc "github.com/MustafaBasol/crm-sub007/internal/service/automation"
	tasksvc "github.com/MustafaBasol/crm-sub007/internal/service/crmtask"
	oppsvc "github.com/MustafaBasol/crm-sub007/internal/service/opportunity"
)

var errNoIdentity = errors.New("call open_session first or pass tenant_id and user_id")

// RegisterTools registers the CRM tools on the server. Every tool except
// open_session acts as the session's actor, or as the identity passed in
// tenant_id, user_id and role when the session has none.
func RegisterTools(
	s *mcpserver.MCPServer,
	reg *SessionRegistry,
	opps *oppsvc.Service,
	tasks *tasksvc.Service,
	auto *autosvc.Service,
) {
	s.AddTool(mcpmcp.NewTool("open_session",
		mcpmcp.WithDescription("Bind this session to a CRM user. Later tool calls act as this user and the session receives the tenant's board events as notifications."),
		mcpmcp.WithString("tenant_id", mcpmcp.Required(), mcpmcp.Description("Tenant UUID")),
		mcpmcp.WithString("user_id", mcpmcp.Required(), mcpmcp.Description("User UUID")),
		mcpmcp.WithString("role", mcpmcp.Description("One of: super_admin, tenant_admin, member. Defaults to member.")),
		mcpmcp.WithString("name", mcpmcp.Description("Display name")),
	), openSessionHandler(reg))

	s.AddTool(mcpmcp.NewTool("get_board",
		withIdentity(
			mcpmcp.WithDescription("Returns the default pipeline with its ordered stages and the opportunities visible to the user, each with a forecast probability."),
		)...,
	), getBoardHandler(reg, opps))

	s.AddTool(mcpmcp.NewTool("move_opportunity_stage",
		withIdentity(
			mcpmcp.WithDescription("Move an opportunity to another stage of the default pipeline. Status follows the stage's closed flags; matching automation rules create follow-up tasks."),
			mcpmcp.WithString("opportunity_id", mcpmcp.Required(), mcpmcp.Description("Opportunity UUID")),
			mcpmcp.WithString("stage_id", mcpmcp.Required(), mcpmcp.Description("Destination stage UUID")),
		)...,
	), moveOpportunityHandler(reg, opps))

	s.AddTool(mcpmcp.NewTool("set_opportunity_team",
		withIdentity(
			mcpmcp.WithDescription("Replace the team of an opportunity. The owner always stays on the team."),
			mcpmcp.WithString("opportunity_id", mcpmcp.Required(), mcpmcp.Description("Opportunity UUID")),
			mcpmcp.WithString("user_ids", mcpmcp.Required(), mcpmcp.Description("Comma-separated user UUIDs")),
		)...,
	), setTeamHandler(reg, opps))

	s.AddTool(mcpmcp.NewTool("create_task",
		withIdentity(
			mcpmcp.WithDescription("Create a follow-up task on an opportunity or an account. Exactly one of opportunity_id or account_id is required."),
			mcpmcp.WithString("title", mcpmcp.Required(), mcpmcp.Description("Task title, at most 220 characters")),
			mcpmcp.WithString("opportunity_id", mcpmcp.Description("Opportunity UUID")),
			mcpmcp.WithString("account_id", mcpmcp.Description("Account UUID")),
			mcpmcp.WithString("due_at", mcpmcp.Description("Due date, YYYY-MM-DD")),
			mcpmcp.WithString("assignee_user_id", mcpmcp.Description("Assignee user UUID")),
		)...,
	), createTaskHandler(reg, tasks))

	s.AddTool(mcpmcp.NewTool("run_time_driven_rules",
		withIdentity(
			mcpmcp.WithDescription("Run the overdue-task and stale-deal rules for the tenant now. Admin only. Returns the number of tasks created."),
			mcpmcp.WithString("kind", mcpmcp.Description("overdue-task or stale-deal. Omit to run both.")),
		)...,
	), runRulesHandler(reg, auto))
}

func withIdentity(opts ...mcpmcp.ToolOption) []mcpmcp.ToolOption {
	return append(opts,
		mcpmcp.WithString("tenant_id", mcpmcp.Description("Tenant UUID, when the session was not opened")),
		mcpmcp.WithString("user_id", mcpmcp.Description("User UUID, when the session was not opened")),
		mcpmcp.WithString("role", mcpmcp.Description("Role for tenant_id/user_id. Defaults to member.")),
	)
}

// ── Identity ──────────────────────────────────────────────────────────────

func parseActor(req mcpmcp.CallToolRequest) (actor.Actor, error) {
	tenantID, err := uuid.Parse(mcpmcp.ParseString(req, "tenant_id", ""))
	if err != nil {
		return actor.Actor{}, fmt.Errorf("invalid tenant_id")
	}
	userID, err := uuid.Parse(mcpmcp.ParseString(req, "user_id", ""))
	if err != nil {
		return actor.Actor{}, fmt.Errorf("invalid user_id")
	}
	role := actor.RoleMember
	if raw := mcpmcp.ParseString(req, "role", ""); raw != "" {
		if role, err = actor.ParseRole(raw); err != nil {
			return actor.Actor{}, err
		}
	}
	return actor.Actor{
		ID:       userID,
		TenantID: tenantID,
		Role:     role,
		Name:     mcpmcp.ParseString(req, "name", ""),
	}, nil
}

func resolveActor(ctx context.Context, reg *SessionRegistry, req mcpmcp.CallToolRequest) (actor.Actor, error) {
	if session := mcpserver.ClientSessionFromContext(ctx); session != nil {
		if a, ok := reg.Actor(session.SessionID()); ok {
			return a, nil
		}
	}
	if mcpmcp.ParseString(req, "tenant_id", "") == "" || mcpmcp.ParseString(req, "user_id", "") == "" {
		return actor.Actor{}, errNoIdentity
	}
	return parseActor(req)
}

func optionalID(req mcpmcp.CallToolRequest, key string) (*uuid.UUID, error) {
	raw := mcpmcp.ParseString(req, key, "")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &id, nil
}

func errorResult(err error) *mcpmcp.CallToolResult {
	return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err))
}

func jsonResult(v any) (*mcpmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcpmcp.NewToolResultText(string(data)), nil
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func openSessionHandler(reg *SessionRegistry) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		a, err := parseActor(req)
		if err != nil {
			return errorResult(err), nil
		}
		session := mcpserver.ClientSessionFromContext(ctx)
		if session == nil {
			return mcpmcp.NewToolResultText("error: no active session"), nil
		}
		reg.Register(session.SessionID(), a)
		return jsonResult(a)
	}
}

func getBoardHandler(reg *SessionRegistry, opps *oppsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		a, err := resolveActor(ctx, reg, req)
		if err != nil {
			return errorResult(err), nil
		}
		board, err := opps.Board(ctx, a)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(board)
	}
}

func moveOpportunityHandler(reg *SessionRegistry, opps *oppsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		a, err := resolveActor(ctx, reg, req)
		if err != nil {
			return errorResult(err), nil
		}
		oppID, err := uuid.Parse(mcpmcp.ParseString(req, "opportunity_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid opportunity_id"), nil
		}
		stageID, err := uuid.Parse(mcpmcp.ParseString(req, "stage_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid stage_id"), nil
		}

		v, err := opps.Move(ctx, a, oppID, stageID)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(v)
	}
}

func setTeamHandler(reg *SessionRegistry, opps *oppsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		a, err := resolveActor(ctx, reg, req)
		if err != nil {
			return errorResult(err), nil
		}
		oppID, err := uuid.Parse(mcpmcp.ParseString(req, "opportunity_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid opportunity_id"), nil
		}

		var userIDs []uuid.UUID
		for _, raw := range strings.Split(mcpmcp.ParseString(req, "user_ids", ""), ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return mcpmcp.NewToolResultText(fmt.Sprintf("error: invalid user id %q", raw)), nil
			}
			userIDs = append(userIDs, id)
		}

		team, err := opps.SetTeam(ctx, a, oppID, userIDs)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(team)
	}
}

func createTaskHandler(reg *SessionRegistry, tasks *tasksvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		a, err := resolveActor(ctx, reg, req)
		if err != nil {
			return errorResult(err), nil
		}
		in := domaintask.CreateInput{Title: mcpmcp.ParseString(req, "title", "")}
		if in.OpportunityID, err = optionalID(req, "opportunity_id"); err != nil {
			return errorResult(err), nil
		}
		if in.AccountID, err = optionalID(req, "account_id"); err != nil {
			return errorResult(err), nil
		}
		if in.AssigneeUserID, err = optionalID(req, "assignee_user_id"); err != nil {
			return errorResult(err), nil
		}
		if due := mcpmcp.ParseString(req, "due_at", ""); due != "" {
			in.DueAt = &due
		}

		t, err := tasks.Create(ctx, a, in)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(t)
	}
}

func runRulesHandler(reg *SessionRegistry, auto *autosvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		a, err := resolveActor(ctx, reg, req)
		if err != nil {
			return errorResult(err), nil
		}
		var kind *domainauto.Kind
		if raw := mcpmcp.ParseString(req, "kind", ""); raw != "" {
			k, err := domainauto.ParseKind(raw)
			if err != nil {
				return errorResult(err), nil
			}
			kind = &k
		}

		res, err := auto.Run(ctx, a, kind)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(res)
	}
}
