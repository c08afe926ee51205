package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	domainauto "github.com/MustafaBasol/crm-sub007/internal/domain/automation"
	portauto "github.com/MustafaBasol/crm-sub007/internal/port/automation"
)

var _ portauto.RuleRepository = (*Repository)(nil)

const ruleColumns = `id, tenant_id, kind, enabled, assignee_target, assignee_user_id, config, created_at, updated_at`

// Repository keeps every rule kind in crm_automation_rules; the kind column
// selects how config decodes.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, rule domainauto.Rule) error {
	config, err := json.Marshal(rule.Payload())
	if err != nil {
		return fmt.Errorf("marshal rule config: %w", err)
	}
	_, err = postgres.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO crm_automation_rules (`+ruleColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rule.ID, rule.TenantID, string(rule.Kind), rule.Enabled, string(rule.AssigneeTarget), rule.AssigneeUserID,
		config, rule.CreatedAt, rule.UpdatedAt,
	)
	return postgres.Translate(err, "insert automation rule")
}

func (r *Repository) Update(ctx context.Context, rule domainauto.Rule) error {
	config, err := json.Marshal(rule.Payload())
	if err != nil {
		return fmt.Errorf("marshal rule config: %w", err)
	}
	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE crm_automation_rules
		 SET enabled = $3, assignee_target = $4, assignee_user_id = $5, config = $6, updated_at = $7
		 WHERE tenant_id = $1 AND id = $2`,
		rule.TenantID, rule.ID, rule.Enabled, string(rule.AssigneeTarget), rule.AssigneeUserID, config, rule.UpdatedAt,
	)
	if err != nil {
		return postgres.Translate(err, "update automation rule")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "update automation rule")
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domainauto.Rule, error) {
	row := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM crm_automation_rules WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	rule, err := scanRule(row)
	if err != nil {
		return domainauto.Rule{}, postgres.Translate(err, "get automation rule")
	}
	return rule, nil
}

func (r *Repository) List(ctx context.Context, f domainauto.ListFilters) ([]domainauto.Rule, error) {
	where := []string{"tenant_id = $1"}
	args := []any{f.TenantID}
	if f.Kind != nil {
		args = append(args, string(*f.Kind))
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if f.EnabledOnly {
		where = append(where, "enabled")
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+ruleColumns+` FROM crm_automation_rules
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY created_at ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list automation rules: %w", err)
	}
	defer rows.Close()

	out := []domainauto.Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan automation rule: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func scanRule(row pgx.Row) (domainauto.Rule, error) {
	var (
		rule         domainauto.Rule
		kind, target string
		config       []byte
	)
	if err := row.Scan(&rule.ID, &rule.TenantID, &kind, &rule.Enabled, &target, &rule.AssigneeUserID,
		&config, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		return domainauto.Rule{}, err
	}
	rule.Kind = domainauto.Kind(kind)
	rule.AssigneeTarget = domainauto.AssigneeTarget(target)
	if err := decodeConfig(&rule, config); err != nil {
		return domainauto.Rule{}, fmt.Errorf("decode %s config of rule %s: %w", kind, rule.ID, err)
	}
	return rule, nil
}

func decodeConfig(rule *domainauto.Rule, config []byte) error {
	switch rule.Kind {
	case domainauto.KindStageTask:
		rule.StageTask = &domainauto.StageTask{}
		return json.Unmarshal(config, rule.StageTask)
	case domainauto.KindStageSequence:
		rule.StageSequence = &domainauto.StageSequence{}
		return json.Unmarshal(config, rule.StageSequence)
	case domainauto.KindOverdueTask:
		rule.OverdueTask = &domainauto.OverdueTask{}
		return json.Unmarshal(config, rule.OverdueTask)
	case domainauto.KindStaleDeal:
		rule.StaleDeal = &domainauto.StaleDeal{}
		return json.Unmarshal(config, rule.StaleDeal)
	case domainauto.KindWonChecklist:
		rule.WonChecklist = &domainauto.WonChecklist{}
		return json.Unmarshal(config, rule.WonChecklist)
	}
	return fmt.Errorf("unknown kind")
}
