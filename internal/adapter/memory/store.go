package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	domainactivity "github.com/MustafaBasol/crm-sub007/internal/domain/activity"
	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domainauto "github.com/MustafaBasol/crm-sub007/internal/domain/automation"
	domaincontact "github.com/MustafaBasol/crm-sub007/internal/domain/contact"
	domaintask "github.com/MustafaBasol/crm-sub007/internal/domain/crmtask"
	domainlead "github.com/MustafaBasol/crm-sub007/internal/domain/lead"
	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	domainpipeline "github.com/MustafaBasol/crm-sub007/internal/domain/pipeline"
	domainquote "github.com/MustafaBasol/crm-sub007/internal/domain/quote"
	domainsale "github.com/MustafaBasol/crm-sub007/internal/domain/sale"
	domaintenant "github.com/MustafaBasol/crm-sub007/internal/domain/tenant"
	portactivity "github.com/MustafaBasol/crm-sub007/internal/port/activity"
	portauto "github.com/MustafaBasol/crm-sub007/internal/port/automation"
	portcontact "github.com/MustafaBasol/crm-sub007/internal/port/contact"
	porttask "github.com/MustafaBasol/crm-sub007/internal/port/crmtask"
	portlead "github.com/MustafaBasol/crm-sub007/internal/port/lead"
	portopp "github.com/MustafaBasol/crm-sub007/internal/port/opportunity"
	portpipeline "github.com/MustafaBasol/crm-sub007/internal/port/pipeline"
	portquote "github.com/MustafaBasol/crm-sub007/internal/port/quote"
	portsale "github.com/MustafaBasol/crm-sub007/internal/port/sale"
	porttenant "github.com/MustafaBasol/crm-sub007/internal/port/tenant"
	porttx "github.com/MustafaBasol/crm-sub007/internal/port/tx"
)

// Store keeps every repository in process memory. It backs scenario tests
// and mirrors the constraints the Postgres schema enforces.
type Store struct {
	mu   sync.Mutex
	data state

	txMu sync.Mutex
}

type state struct {
	tenants    map[uuid.UUID]domaintenant.Tenant
	pipelines  map[uuid.UUID]domainpipeline.Pipeline
	stages     map[uuid.UUID]domainpipeline.Stage
	opps       map[uuid.UUID]domainopp.Opportunity
	members    map[uuid.UUID][]uuid.UUID
	history    []domainopp.StageHistory
	rules      map[uuid.UUID]domainauto.Rule
	tasks      map[uuid.UUID]domaintask.Task
	activities map[uuid.UUID]domainactivity.Activity
	leads      map[uuid.UUID]domainlead.Lead
	contacts   map[uuid.UUID]domaincontact.Contact
	quotes     map[uuid.UUID]domainquote.Quote
	sales      map[uuid.UUID]domainsale.Sale
}

func newState() state {
	return state{
		tenants:    make(map[uuid.UUID]domaintenant.Tenant),
		pipelines:  make(map[uuid.UUID]domainpipeline.Pipeline),
		stages:     make(map[uuid.UUID]domainpipeline.Stage),
		opps:       make(map[uuid.UUID]domainopp.Opportunity),
		members:    make(map[uuid.UUID][]uuid.UUID),
		rules:      make(map[uuid.UUID]domainauto.Rule),
		tasks:      make(map[uuid.UUID]domaintask.Task),
		activities: make(map[uuid.UUID]domainactivity.Activity),
		leads:      make(map[uuid.UUID]domainlead.Lead),
		contacts:   make(map[uuid.UUID]domaincontact.Contact),
		quotes:     make(map[uuid.UUID]domainquote.Quote),
		sales:      make(map[uuid.UUID]domainsale.Sale),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.tenants {
		c.tenants[k] = v
	}
	for k, v := range s.pipelines {
		c.pipelines[k] = v
	}
	for k, v := range s.stages {
		c.stages[k] = v
	}
	for k, v := range s.opps {
		c.opps[k] = v
	}
	for k, v := range s.members {
		c.members[k] = append([]uuid.UUID(nil), v...)
	}
	c.history = append([]domainopp.StageHistory(nil), s.history...)
	for k, v := range s.rules {
		c.rules[k] = v
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	for k, v := range s.activities {
		c.activities[k] = v
	}
	for k, v := range s.leads {
		c.leads[k] = v
	}
	for k, v := range s.contacts {
		c.contacts[k] = v
	}
	for k, v := range s.quotes {
		c.quotes[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	return c
}

func NewStore() *Store {
	return &Store{data: newState()}
}

// ── Transactions ────────────────────────────────────────────────────────────

type txKey struct{}

var _ porttx.Manager = (*Store)(nil)

// WithinTx serialises transactions and restores a snapshot when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// ── Repositories ────────────────────────────────────────────────────────────

func (s *Store) Tenants() *TenantRepository            { return &TenantRepository{s} }
func (s *Store) Pipelines() *PipelineRepository        { return &PipelineRepository{s} }
func (s *Store) Opportunities() *OpportunityRepository { return &OpportunityRepository{s} }
func (s *Store) Rules() *RuleRepository                { return &RuleRepository{s} }
func (s *Store) Tasks() *TaskRepository                { return &TaskRepository{s} }
func (s *Store) Activities() *ActivityRepository       { return &ActivityRepository{s} }
func (s *Store) Leads() *LeadRepository                { return &LeadRepository{s} }
func (s *Store) Contacts() *ContactRepository          { return &ContactRepository{s} }
func (s *Store) Quotes() *QuoteRepository              { return &QuoteRepository{s} }
func (s *Store) Sales() *SaleRepository                { return &SaleRepository{s} }

var (
	_ porttenant.Repository   = (*TenantRepository)(nil)
	_ portpipeline.Repository = (*PipelineRepository)(nil)
	_ portopp.Repository      = (*OpportunityRepository)(nil)
	_ portauto.RuleRepository = (*RuleRepository)(nil)
	_ porttask.Repository     = (*TaskRepository)(nil)
	_ portactivity.Repository = (*ActivityRepository)(nil)
	_ portlead.Repository     = (*LeadRepository)(nil)
	_ portcontact.Repository  = (*ContactRepository)(nil)
	_ portquote.Repository    = (*QuoteRepository)(nil)
	_ portsale.Repository     = (*SaleRepository)(nil)
)

type TenantRepository struct{ s *Store }

func (r *TenantRepository) Create(_ context.Context, t domaintenant.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.tenants[t.ID]; ok {
		return apperr.Conflict("tenant %s exists", t.ID)
	}
	r.s.data.tenants[t.ID] = t
	return nil
}

func (r *TenantRepository) GetByID(_ context.Context, id uuid.UUID) (domaintenant.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.tenants[id]
	if !ok {
		return domaintenant.Tenant{}, apperr.NotFound("tenant %s", id)
	}
	return t, nil
}

func (r *TenantRepository) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tenants := make([]domaintenant.Tenant, 0, len(r.s.data.tenants))
	for _, t := range r.s.data.tenants {
		tenants = append(tenants, t)
	}
	sort.Slice(tenants, func(i, j int) bool { return tenants[i].CreatedAt.Before(tenants[j].CreatedAt) })
	ids := make([]uuid.UUID, 0, len(tenants))
	for _, t := range tenants {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

type PipelineRepository struct{ s *Store }

func (r *PipelineRepository) GetDefault(_ context.Context, tenantID uuid.UUID) (domainpipeline.Pipeline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.pipelines {
		if p.TenantID == tenantID && p.IsDefault {
			return p, nil
		}
	}
	return domainpipeline.Pipeline{}, apperr.NotFound("default pipeline")
}

func (r *PipelineRepository) CreateWithStages(_ context.Context, p domainpipeline.Pipeline, stages []domainpipeline.Stage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.IsDefault {
		for _, existing := range r.s.data.pipelines {
			if existing.TenantID == p.TenantID && existing.IsDefault {
				return apperr.Conflict("default pipeline exists")
			}
		}
	}
	r.s.data.pipelines[p.ID] = p
	for _, st := range stages {
		r.s.data.stages[st.ID] = st
	}
	return nil
}

func (r *PipelineRepository) ListStages(_ context.Context, tenantID, pipelineID uuid.UUID) ([]domainpipeline.Stage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainpipeline.Stage{}
	for _, st := range r.s.data.stages {
		if st.TenantID == tenantID && st.PipelineID == pipelineID {
			out = append(out, st)
		}
	}
	domainpipeline.SortStages(out)
	return out, nil
}

// AddStage inserts one stage; tests use it to build custom pipelines.
func (r *PipelineRepository) AddStage(st domainpipeline.Stage) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.stages[st.ID] = st
}

type OpportunityRepository struct{ s *Store }

func (r *OpportunityRepository) Create(_ context.Context, o domainopp.Opportunity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.opps[o.ID]; ok {
		return apperr.Conflict("opportunity %s exists", o.ID)
	}
	r.s.data.opps[o.ID] = o
	return nil
}

func (r *OpportunityRepository) GetByID(_ context.Context, tenantID, id uuid.UUID) (domainopp.Opportunity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.opps[id]
	if !ok || o.TenantID != tenantID {
		return domainopp.Opportunity{}, apperr.NotFound("opportunity %s", id)
	}
	return o, nil
}

func (r *OpportunityRepository) GetVisible(_ context.Context, tenantID, id, userID uuid.UUID) (domainopp.Opportunity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.opps[id]
	if !ok || o.TenantID != tenantID || !r.visible(o, userID) {
		return domainopp.Opportunity{}, apperr.NotFound("opportunity %s", id)
	}
	return o, nil
}

func (r *OpportunityRepository) visible(o domainopp.Opportunity, userID uuid.UUID) bool {
	if o.OwnerUserID == userID {
		return true
	}
	for _, m := range r.s.data.members[o.ID] {
		if m == userID {
			return true
		}
	}
	return false
}

func (r *OpportunityRepository) Update(_ context.Context, o domainopp.Opportunity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.opps[o.ID]
	if !ok || existing.TenantID != o.TenantID {
		return apperr.NotFound("opportunity %s", o.ID)
	}
	r.s.data.opps[o.ID] = o
	return nil
}

func (r *OpportunityRepository) List(_ context.Context, f domainopp.ListFilters) ([]domainopp.Opportunity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainopp.Opportunity{}
	for _, o := range r.s.data.opps {
		switch {
		case o.TenantID != f.TenantID,
			f.PipelineID != nil && o.PipelineID != *f.PipelineID,
			f.AccountID != nil && (o.AccountID == nil || *o.AccountID != *f.AccountID),
			f.Status != nil && o.Status != *f.Status,
			f.StageID != nil && o.StageID != *f.StageID,
			f.UpdatedBefore != nil && !o.UpdatedAt.Before(*f.UpdatedBefore),
			f.VisibleTo != nil && !r.visible(o, *f.VisibleTo):
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *OpportunityRepository) ReplaceMembers(_ context.Context, _ uuid.UUID, opportunityID uuid.UUID, userIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[uuid.UUID]bool, len(userIDs))
	members := make([]uuid.UUID, 0, len(userIDs))
	for _, id := range userIDs {
		if !seen[id] {
			seen[id] = true
			members = append(members, id)
		}
	}
	r.s.data.members[opportunityID] = members
	return nil
}

func (r *OpportunityRepository) ListMembers(_ context.Context, _ uuid.UUID, opportunityIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID][]uuid.UUID, len(opportunityIDs))
	for _, id := range opportunityIDs {
		if m, ok := r.s.data.members[id]; ok {
			out[id] = append([]uuid.UUID(nil), m...)
		}
	}
	return out, nil
}

func (r *OpportunityRepository) AppendStageHistory(_ context.Context, h domainopp.StageHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.history = append(r.s.data.history, h)
	return nil
}

func (r *OpportunityRepository) ListStageHistory(_ context.Context, tenantID, opportunityID uuid.UUID) ([]domainopp.StageHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainopp.StageHistory{}
	for _, h := range r.s.data.history {
		if h.TenantID == tenantID && h.OpportunityID == opportunityID {
			out = append(out, h)
		}
	}
	// history is append-only, so a stable sort keeps insertion order on ties.
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChangedAt.Before(out[j].ChangedAt) })
	return out, nil
}

type RuleRepository struct{ s *Store }

func (r *RuleRepository) Create(_ context.Context, rule domainauto.Rule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.rules[rule.ID] = rule
	return nil
}

func (r *RuleRepository) Update(_ context.Context, rule domainauto.Rule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.rules[rule.ID]
	if !ok || existing.TenantID != rule.TenantID {
		return apperr.NotFound("automation rule %s", rule.ID)
	}
	r.s.data.rules[rule.ID] = rule
	return nil
}

func (r *RuleRepository) GetByID(_ context.Context, tenantID, id uuid.UUID) (domainauto.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rule, ok := r.s.data.rules[id]
	if !ok || rule.TenantID != tenantID {
		return domainauto.Rule{}, apperr.NotFound("automation rule %s", id)
	}
	return rule, nil
}

func (r *RuleRepository) List(_ context.Context, f domainauto.ListFilters) ([]domainauto.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainauto.Rule{}
	for _, rule := range r.s.data.rules {
		switch {
		case rule.TenantID != f.TenantID,
			f.Kind != nil && rule.Kind != *f.Kind,
			f.EnabledOnly && !rule.Enabled:
			continue
		}
		out = append(out, rule)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type TaskRepository struct{ s *Store }

func (r *TaskRepository) Create(_ context.Context, t domaintask.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.tasks[t.ID] = t
	return nil
}

func (r *TaskRepository) GetByID(_ context.Context, tenantID, id uuid.UUID) (domaintask.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.tasks[id]
	if !ok || t.TenantID != tenantID {
		return domaintask.Task{}, apperr.NotFound("crm task %s", id)
	}
	return t, nil
}

func (r *TaskRepository) List(_ context.Context, f domaintask.ListFilters) ([]domaintask.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domaintask.Task{}
	for _, t := range r.s.data.tasks {
		switch {
		case t.TenantID != f.TenantID,
			f.OpportunityID != nil && (t.OpportunityID == nil || *t.OpportunityID != *f.OpportunityID),
			f.AccountID != nil && (t.AccountID == nil || *t.AccountID != *f.AccountID),
			f.Incomplete && t.Completed:
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *TaskRepository) Update(_ context.Context, t domaintask.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.tasks[t.ID]
	if !ok || existing.TenantID != t.TenantID {
		return apperr.NotFound("crm task %s", t.ID)
	}
	r.s.data.tasks[t.ID] = t
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.tasks[id]
	if !ok || existing.TenantID != tenantID {
		return apperr.NotFound("crm task %s", id)
	}
	delete(r.s.data.tasks, id)
	return nil
}

func (r *TaskRepository) ExistsSince(_ context.Context, q domaintask.ProvenanceQuery) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.data.tasks {
		switch {
		case t.TenantID != q.TenantID,
			t.SourceRuleID == nil || *t.SourceRuleID != q.SourceRuleID,
			t.CreatedAt.Before(q.Since),
			q.OpportunityID != nil && (t.OpportunityID == nil || *t.OpportunityID != *q.OpportunityID),
			q.SourceTaskID != nil && (t.SourceTaskID == nil || *t.SourceTaskID != *q.SourceTaskID):
			continue
		}
		return true, nil
	}
	return false, nil
}

type ActivityRepository struct{ s *Store }

func (r *ActivityRepository) Create(_ context.Context, a domainactivity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.activities[a.ID] = a
	return nil
}

func (r *ActivityRepository) GetByID(_ context.Context, tenantID, id uuid.UUID) (domainactivity.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.activities[id]
	if !ok || a.TenantID != tenantID {
		return domainactivity.Activity{}, apperr.NotFound("activity %s", id)
	}
	return a, nil
}

func (r *ActivityRepository) List(_ context.Context, f domainactivity.ListFilters) ([]domainactivity.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainactivity.Activity{}
	for _, a := range r.s.data.activities {
		switch {
		case a.TenantID != f.TenantID,
			f.OpportunityID != nil && (a.OpportunityID == nil || *a.OpportunityID != *f.OpportunityID),
			f.AccountID != nil && (a.AccountID == nil || *a.AccountID != *f.AccountID):
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ActivityRepository) Update(_ context.Context, a domainactivity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.activities[a.ID]
	if !ok || existing.TenantID != a.TenantID {
		return apperr.NotFound("activity %s", a.ID)
	}
	r.s.data.activities[a.ID] = a
	return nil
}

func (r *ActivityRepository) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.activities[id]
	if !ok || existing.TenantID != tenantID {
		return apperr.NotFound("activity %s", id)
	}
	delete(r.s.data.activities, id)
	return nil
}

type QuoteRepository struct{ s *Store }

func (r *QuoteRepository) Create(_ context.Context, q domainquote.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.quotes {
		if existing.TenantID == q.TenantID && existing.Number == q.Number {
			return apperr.Conflict("quote number %s taken", q.Number)
		}
	}
	r.s.data.quotes[q.ID] = q
	return nil
}

func (r *QuoteRepository) ListNumbers(_ context.Context, tenantID uuid.UUID, prefix string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, q := range r.s.data.quotes {
		if q.TenantID == tenantID && strings.HasPrefix(q.Number, prefix) {
			out = append(out, q.Number)
		}
	}
	return out, nil
}

func (r *QuoteRepository) List(_ context.Context, tenantID uuid.UUID) ([]domainquote.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainquote.Quote{}
	for _, q := range r.s.data.quotes {
		if q.TenantID == tenantID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

type SaleRepository struct{ s *Store }

func (r *SaleRepository) Create(_ context.Context, sale domainsale.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.sales {
		if existing.TenantID == sale.TenantID && existing.Number == sale.Number {
			return apperr.Conflict("sale number %s taken", sale.Number)
		}
	}
	r.s.data.sales[sale.ID] = sale
	return nil
}

func (r *SaleRepository) ListNumbers(_ context.Context, tenantID uuid.UUID, prefix string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, sale := range r.s.data.sales {
		if sale.TenantID == tenantID && strings.HasPrefix(sale.Number, prefix) {
			out = append(out, sale.Number)
		}
	}
	return out, nil
}

func (r *SaleRepository) List(_ context.Context, tenantID uuid.UUID) ([]domainsale.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainsale.Sale{}
	for _, sale := range r.s.data.sales {
		if sale.TenantID == tenantID {
			out = append(out, sale)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SoldAt.After(out[j].SoldAt) })
	return out, nil
}
