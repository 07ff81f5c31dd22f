package results

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
	"github.com/r3d91ll/spectra/pkg/table"
)

func mustTable(t *testing.T, data string) *table.Table {
	t.Helper()
	tbl, err := table.ParseCSV("t.csv", strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func refs(rs []*Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestRegistry_AddAndGet(t *testing.T) {
	r := NewRegistry()
	res := r.Add("a.csv", mustTable(t, "x,y\n1,2\n"), []byte("x,y\n1,2\n"))

	if res.Ref == "" {
		t.Fatal("expected a generated reference")
	}
	if res.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	got, err := r.Get(res.Ref)
	if err != nil || got != res {
		t.Fatalf("Get returned %v, %v", got, err)
	}
	if _, err := r.Get("missing"); !serrors.IsCode(err, serrors.ErrResultNotFound) {
		t.Errorf("expected RESULT_NOT_FOUND, got %v", err)
	}
}

func TestRegistry_WriteOnce(t *testing.T) {
	r := NewRegistry()
	first := &Result{Ref: "fixed", Name: "first"}
	if err := r.Put(first); err != nil {
		t.Fatal(err)
	}
	err := r.Put(&Result{Ref: "fixed", Name: "second"})
	if !serrors.IsCode(err, serrors.ErrResultExists) {
		t.Fatalf("expected RESULT_EXISTS, got %v", err)
	}
	got, _ := r.Get("fixed")
	if got.Name != "first" {
		t.Error("stored result must not be overwritten")
	}
	if err := r.Put(&Result{}); !serrors.IsCode(err, serrors.ErrValidationRequired) {
		t.Errorf("expected VALIDATION_REQUIRED, got %v", err)
	}
}

func TestRegistry_ListAndSearch(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"b.csv", "a.csv", "c.csv"} {
		r.Add(name, nil, nil)
	}
	if diff := cmp.Diff([]string{"b.csv", "a.csv", "c.csv"}, refs(r.List())); diff != "" {
		t.Errorf("insertion order (-want +got):\n%s", diff)
	}

	c := r.List()[2]
	if _, err := r.SetDescription(c.Ref, "Baseline Run"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"b.csv", "a.csv", "c.csv"}},
		{"A.CSV", []string{"a.csv"}},
		{"baseline", []string{"c.csv"}},
		{"nothing", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := refs(r.Search(tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Search(%q) (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestRegistry_SetDescription(t *testing.T) {
	r := NewRegistry()
	res := r.Add("a.csv", nil, nil)

	updated, err := r.SetDescription(res.Ref, "first")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Description != "first" {
		t.Errorf("unexpected description %q", updated.Description)
	}
	if res.Description != "" {
		t.Error("previously returned results must not change")
	}
	if _, err := r.SetDescription(res.Ref, "second"); !serrors.IsCode(err, serrors.ErrResultExists) {
		t.Errorf("expected RESULT_EXISTS, got %v", err)
	}
	if _, err := r.SetDescription("missing", "x"); !serrors.IsCode(err, serrors.ErrResultNotFound) {
		t.Errorf("expected RESULT_NOT_FOUND, got %v", err)
	}
	got, _ := r.Get(res.Ref)
	if got.Description != "first" {
		t.Errorf("unexpected stored description %q", got.Description)
	}
}

func TestRegistry_GetAllAndReset(t *testing.T) {
	r := NewRegistry()
	a := r.Add("a.csv", nil, nil)
	b := r.Add("b.csv", nil, nil)

	got, err := r.GetAll([]string{b.Ref, a.Ref})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b.csv", "a.csv"}, refs(got)); diff != "" {
		t.Errorf("GetAll order (-want +got):\n%s", diff)
	}
	if _, err := r.GetAll([]string{a.Ref, "missing"}); !serrors.IsCode(err, serrors.ErrResultNotFound) {
		t.Errorf("expected RESULT_NOT_FOUND, got %v", err)
	}

	r.Reset()
	if r.Len() != 0 || len(r.List()) != 0 {
		t.Error("Reset should empty the registry")
	}
	if _, err := r.Get(a.Ref); err == nil {
		t.Error("reset results should be gone")
	}
}

func TestResult_Summary(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	res := &Result{
		Ref:       "r1",
		Name:      "a.csv",
		Table:     mustTable(t, "x,label\n1,a\n2,b\n"),
		CreatedAt: created,
	}
	want := Summary{
		Ref:  "r1",
		Name: "a.csv",
		Rows: 2,
		Columns: []ColumnSummary{
			{Name: "x", Numeric: true},
			{Name: "label", Numeric: false},
		},
		CreatedAt: created,
	}
	if diff := cmp.Diff(want, res.Summary()); diff != "" {
		t.Errorf("Summary (-want +got):\n%s", diff)
	}

	empty := (&Result{Ref: "r2"}).Summary()
	if empty.Rows != 0 || empty.Columns == nil {
		t.Errorf("unexpected empty summary %+v", empty)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := r.Add("f.csv", nil, nil)
			_, _ = r.SetDescription(res.Ref, "d")
			_ = r.Search("d")
		}()
	}
	wg.Wait()
	if r.Len() != 20 {
		t.Errorf("expected 20 results, got %d", r.Len())
	}
}
