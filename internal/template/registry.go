package template

import (
	"github.com/frahmantamala/payroll-management/internal"
)

// Registry is a read-only snapshot of an organization's templates for one
// batch run. Lookups never hit storage.
type Registry struct {
	org     internal.OrgContext
	byID    map[int64]*Template
	ordered []*Template
}

func NewRegistry(org internal.OrgContext, templates []*Template) *Registry {
	r := &Registry{
		org:     org,
		byID:    make(map[int64]*Template, len(templates)),
		ordered: make([]*Template, 0, len(templates)),
	}
	for _, t := range templates {
		if t == nil {
			continue
		}
		r.byID[t.ID] = t
		r.ordered = append(r.ordered, t)
	}
	return r
}

func (r *Registry) Org() internal.OrgContext {
	return r.org
}

func (r *Registry) Lookup(id int64) (*Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Active returns the templates eligible for calculation, in registry order.
func (r *Registry) Active() []*Template {
	active := make([]*Template, 0, len(r.ordered))
	for _, t := range r.ordered {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active
}

func (r *Registry) Len() int {
	return len(r.ordered)
}
