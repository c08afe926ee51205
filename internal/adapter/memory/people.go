package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	domaincontact "github.com/MustafaBasol/crm-sub007/internal/domain/contact"
	domainlead "github.com/MustafaBasol/crm-sub007/internal/domain/lead"
)

type LeadRepository struct{ s *Store }

func (r *LeadRepository) Create(_ context.Context, l domainlead.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.leads[l.ID] = l
	return nil
}

func (r *LeadRepository) GetByID(_ context.Context, tenantID, id uuid.UUID) (domainlead.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.data.leads[id]
	if !ok || l.TenantID != tenantID {
		return domainlead.Lead{}, apperr.NotFound("lead %s", id)
	}
	return l, nil
}

func (r *LeadRepository) List(_ context.Context, tenantID uuid.UUID) ([]domainlead.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainlead.Lead{}
	for _, l := range r.s.data.leads {
		if l.TenantID == tenantID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *LeadRepository) Update(_ context.Context, l domainlead.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.leads[l.ID]
	if !ok || existing.TenantID != l.TenantID {
		return apperr.NotFound("lead %s", l.ID)
	}
	r.s.data.leads[l.ID] = l
	return nil
}

func (r *LeadRepository) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.leads[id]
	if !ok || existing.TenantID != tenantID {
		return apperr.NotFound("lead %s", id)
	}
	delete(r.s.data.leads, id)
	return nil
}

type ContactRepository struct{ s *Store }

func (r *ContactRepository) Create(_ context.Context, c domaincontact.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.contacts[c.ID] = c
	return nil
}

func (r *ContactRepository) GetByID(_ context.Context, tenantID, id uuid.UUID) (domaincontact.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.contacts[id]
	if !ok || c.TenantID != tenantID {
		return domaincontact.Contact{}, apperr.NotFound("contact %s", id)
	}
	return c, nil
}

func (r *ContactRepository) List(_ context.Context, f domaincontact.ListFilters) ([]domaincontact.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domaincontact.Contact{}
	for _, c := range r.s.data.contacts {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *ContactRepository) Update(_ context.Context, c domaincontact.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.contacts[c.ID]
	if !ok || existing.TenantID != c.TenantID {
		return apperr.NotFound("contact %s", c.ID)
	}
	r.s.data.contacts[c.ID] = c
	return nil
}

func (r *ContactRepository) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.contacts[id]
	if !ok || existing.TenantID != tenantID {
		return apperr.NotFound("contact %s", id)
	}
	delete(r.s.data.contacts, id)
	return nil
}
