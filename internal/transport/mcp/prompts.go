package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/MustafaBasol/crm-sub007/internal/domain/actor"
	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	oppsvc "github.com/MustafaBasol/crm-sub007/internal/service/opportunity"
)

const pipelineReviewPrompt = "pipeline_review"

// RegisterPrompts registers the pipeline review prompt. It renders the
// caller's current board so an assistant can suggest next steps per deal.
func RegisterPrompts(s *mcpserver.MCPServer, opps *oppsvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt(pipelineReviewPrompt,
			mcpmcp.WithPromptDescription("Summary of the user's pipeline by stage, for a weekly deal review."),
			mcpmcp.WithArgument("tenant_id",
				mcpmcp.ArgumentDescription("Tenant UUID"),
				mcpmcp.RequiredArgument(),
			),
			mcpmcp.WithArgument("user_id",
				mcpmcp.ArgumentDescription("User UUID whose visible opportunities are summarized"),
				mcpmcp.RequiredArgument(),
			),
			mcpmcp.WithArgument("role",
				mcpmcp.ArgumentDescription("super_admin, tenant_admin or member. Defaults to member."),
			),
		),
		pipelineReviewHandler(opps),
	)
}

func pipelineReviewHandler(opps *oppsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		tenantID, err := uuid.Parse(req.Params.Arguments["tenant_id"])
		if err != nil {
			return nil, fmt.Errorf("invalid tenant_id: %w", err)
		}
		userID, err := uuid.Parse(req.Params.Arguments["user_id"])
		if err != nil {
			return nil, fmt.Errorf("invalid user_id: %w", err)
		}
		role := actor.RoleMember
		if raw := req.Params.Arguments["role"]; raw != "" {
			if role, err = actor.ParseRole(raw); err != nil {
				return nil, err
			}
		}

		board, err := opps.Board(ctx, actor.Actor{ID: userID, TenantID: tenantID, Role: role})
		if err != nil {
			return nil, fmt.Errorf("load board: %w", err)
		}

		return mcpmcp.NewGetPromptResult(
			"Pipeline review",
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: renderBoard(board),
					},
				),
			},
		), nil
	}
}

// renderBoard lists each stage with its deals and weighted total.
func renderBoard(b domainopp.Board) string {
	if b.Pipeline == nil {
		return "The tenant has no default pipeline yet. Bootstrap it before reviewing deals."
	}

	byStage := make(map[uuid.UUID][]domainopp.BoardItem, len(b.Stages))
	for _, item := range b.Opportunities {
		byStage[item.StageID] = append(byStage[item.StageID], item)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Review the %q pipeline below. For each open deal suggest the next step and flag deals that look stuck.\n", b.Pipeline.Name)
	for _, st := range b.Stages {
		items := byStage[st.ID]
		weighted := decimal.Zero
		for _, item := range items {
			weighted = weighted.Add(item.Amount.Mul(item.ForecastProbability))
		}
		fmt.Fprintf(&sb, "\n## %s (%d deals, weighted %s)\n", st.Name, len(items), weighted.StringFixed(2))
		for _, item := range items {
			fmt.Fprintf(&sb, "- %s: %s %s, probability %s, updated %s\n",
				item.Name, item.Amount.StringFixed(2), item.Currency,
				item.ForecastProbability.StringFixed(2), item.UpdatedAt.Format("2006-01-02"))
		}
	}
	return sb.String()
}
