package listutil

import (
	"net/url"
	"testing"
)

var traineeColumns = []string{"last_name", "first_name", "email"}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  Params
	}{
		{
			name:  "defaults",
			query: url.Values{},
			want:  Params{Page: 1, PerPage: DefaultPerPage},
		},
		{
			name:  "explicit values",
			query: url.Values{"page": {"3"}, "per_page": {"50"}, "q": {"  mar "}, "sort": {"email"}, "dir": {"desc"}},
			want:  Params{Page: 3, PerPage: 50, Search: "mar", Sort: "email", Desc: true},
		},
		{
			name:  "negative page clamps to 1",
			query: url.Values{"page": {"-4"}},
			want:  Params{Page: 1, PerPage: DefaultPerPage},
		},
		{
			name:  "per_page capped",
			query: url.Values{"per_page": {"5000"}},
			want:  Params{Page: 1, PerPage: MaxPerPage},
		},
		{
			name:  "garbage per_page",
			query: url.Values{"per_page": {"lots"}},
			want:  Params{Page: 1, PerPage: DefaultPerPage},
		},
		{
			name:  "unknown sort column dropped",
			query: url.Values{"sort": {"password"}},
			want:  Params{Page: 1, PerPage: DefaultPerPage},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.query, traineeColumns)
			if got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParams_OffsetAndDirection(t *testing.T) {
	p := Params{Page: 3, PerPage: 20}
	if p.Offset() != 40 {
		t.Errorf("Offset() = %d, want 40", p.Offset())
	}
	if p.Direction() != "ASC" {
		t.Errorf("Direction() = %q, want ASC", p.Direction())
	}
	p.Desc = true
	if p.Direction() != "DESC" {
		t.Errorf("Direction() = %q, want DESC", p.Direction())
	}
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name                 string
		page, perPage, total int
		wantPage, wantTotalP int
		wantNext             bool
	}{
		{"empty", 1, 20, 0, 1, 1, false},
		{"exact fit", 1, 10, 20, 1, 2, true},
		{"partial last page", 3, 10, 25, 3, 3, false},
		{"page past end clamps", 9, 10, 25, 3, 3, false},
		{"zero per page uses default", 1, 0, 45, 1, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewPageInfo(tt.page, tt.perPage, tt.total)
			if info.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", info.Page, tt.wantPage)
			}
			if info.TotalPages != tt.wantTotalP {
				t.Errorf("TotalPages = %d, want %d", info.TotalPages, tt.wantTotalP)
			}
			if info.HasNext() != tt.wantNext {
				t.Errorf("HasNext() = %v, want %v", info.HasNext(), tt.wantNext)
			}
		})
	}
}
