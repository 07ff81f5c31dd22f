// Package results keeps the parsed outputs of the most recent upload.
package results

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
	"github.com/r3d91ll/spectra/pkg/table"
)

// Result is one processed file.
type Result struct {
	Ref         string
	Name        string
	Description string
	Table       *table.Table
	Raw         []byte
	CreatedAt   time.Time
}

// Summary is the JSON view of a result.
type Summary struct {
	Ref         string          `json:"ref"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Rows        int             `json:"rows"`
	Columns     []ColumnSummary `json:"columns"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ColumnSummary describes one column of a result table.
type ColumnSummary struct {
	Name    string `json:"name"`
	Numeric bool   `json:"numeric"`
}

// Summary returns the JSON view of r.
func (r *Result) Summary() Summary {
	s := Summary{
		Ref:         r.Ref,
		Name:        r.Name,
		Description: r.Description,
		Rows:        r.Table.Len(),
		CreatedAt:   r.CreatedAt,
		Columns:     []ColumnSummary{},
	}
	if r.Table == nil {
		return s
	}
	numeric := make(map[string]bool)
	for _, c := range r.Table.NumericColumns() {
		numeric[c] = true
	}
	for _, c := range r.Table.Columns {
		s.Columns = append(s.Columns, ColumnSummary{Name: c, Numeric: numeric[c]})
	}
	return s
}

// Registry is a write-once store of results keyed by reference.
// Results are listed in insertion order. Stored *Result values are never
// mutated; SetDescription swaps in a copy.
type Registry struct {
	mu      sync.RWMutex
	results map[string]*Result
	order   []string
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		results: make(map[string]*Result),
		now:     time.Now,
	}
}

// Add stores a new result under a generated reference.
func (r *Registry) Add(name string, tbl *table.Table, raw []byte) *Result {
	res := &Result{
		Ref:   uuid.New().String(),
		Name:  name,
		Table: tbl,
		Raw:   raw,
	}
	// A fresh uuid cannot collide.
	_ = r.Put(res)
	return res
}

// Put stores a result under its Ref. A Ref that is already present is
// rejected; stored results are never overwritten.
func (r *Registry) Put(res *Result) error {
	if res == nil || res.Ref == "" {
		return serrors.Validation(serrors.ErrValidationRequired, "result reference is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.results[res.Ref]; exists {
		return serrors.ResultExists(res.Ref)
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = r.now()
	}
	r.results[res.Ref] = res
	r.order = append(r.order, res.Ref)
	return nil
}

// Get retrieves a result by reference.
func (r *Registry) Get(ref string) (*Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.results[ref]
	if !ok {
		return nil, serrors.ResultNotFound(ref)
	}
	return res, nil
}

// GetAll resolves several references, failing on the first unknown one.
func (r *Registry) GetAll(refs []string) ([]*Result, error) {
	out := make([]*Result, 0, len(refs))
	for _, ref := range refs {
		res, err := r.Get(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// List returns every result in insertion order.
func (r *Registry) List() []*Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Result, 0, len(r.order))
	for _, ref := range r.order {
		out = append(out, r.results[ref])
	}
	return out
}

// Search returns results whose name or description contains query,
// ignoring case. An empty query matches everything.
func (r *Registry) Search(query string) []*Result {
	all := r.List()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	var out []*Result
	for _, res := range all {
		if strings.Contains(strings.ToLower(res.Name), q) ||
			strings.Contains(strings.ToLower(res.Description), q) {
			out = append(out, res)
		}
	}
	return out
}

// SetDescription sets a result's description once.
func (r *Registry) SetDescription(ref, description string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.results[ref]
	if !ok {
		return nil, serrors.ResultNotFound(ref)
	}
	if res.Description != "" {
		return nil, serrors.ResultExists(ref).WithContext("field", "description")
	}
	updated := *res
	updated.Description = description
	r.results[ref] = &updated
	return &updated, nil
}

// Len returns the number of stored results.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Reset removes every result.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = make(map[string]*Result)
	r.order = nil
}
