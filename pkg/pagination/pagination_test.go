package pagination

import (
	"net/url"
	"testing"
)

func TestNormalizeBounds(t *testing.T) {
	t.Parallel()

	p := Normalize(Params{})
	if p.Page != 1 || p.PerPage != DefaultPerPage {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	p = Normalize(Params{Page: 3, PerPage: 500})
	if p.PerPage != MaxPerPage {
		t.Fatalf("expected per-page cap, got %d", p.PerPage)
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()

	if got := (Params{Page: 1, PerPage: 15}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
	if got := (Params{Page: 4, PerPage: 10}).Offset(); got != 30 {
		t.Fatalf("expected offset 30, got %d", got)
	}
}

func TestFromQuery(t *testing.T) {
	t.Parallel()

	values := url.Values{"page": {"2"}, "per_page": {"20"}}
	p := FromQuery(values)
	if p.Page != 2 || p.PerPage != 20 {
		t.Fatalf("unexpected params: %+v", p)
	}

	p = FromQuery(url.Values{"page": {"junk"}})
	if p.Page != 1 {
		t.Fatalf("expected fallback page 1, got %d", p.Page)
	}
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	meta := NewMeta(Params{Page: 2, PerPage: 10}, 35)
	if meta.TotalPages != 4 {
		t.Fatalf("expected 4 pages, got %d", meta.TotalPages)
	}
	if meta.Total != 35 {
		t.Fatalf("expected total 35, got %d", meta.Total)
	}

	empty := NewMeta(Params{}, 0)
	if empty.TotalPages != 1 {
		t.Fatalf("expected at least one page, got %d", empty.TotalPages)
	}
}
