package attackforge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-attackforge"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		params   []attackforge.URLParam
		want     string
	}{
		{
			name:     "no parameters",
			endpoint: "library/assets",
			want:     "library/assets",
		},
		{
			name:     "empty query is omitted",
			endpoint: "library/assets",
			params:   []attackforge.URLParam{attackforge.WithQuery("")},
			want:     "library/assets",
		},
		{
			name:     "query only",
			endpoint: "library/assets",
			params:   []attackforge.URLParam{attackforge.WithQuery("{ a: 1 }")},
			want:     "library/assets?q={ a: 1 }",
		},
		{
			name:     "skip only",
			endpoint: "users",
			params:   []attackforge.URLParam{attackforge.WithSkip(50)},
			want:     "users?skip=50",
		},
		{
			name:     "zero skip is emitted",
			endpoint: "users",
			params:   []attackforge.URLParam{attackforge.WithSkip(0)},
			want:     "users?skip=0",
		},
		{
			name:     "query before skip regardless of option order",
			endpoint: "assets",
			params:   []attackforge.URLParam{attackforge.WithSkip(10), attackforge.WithQuery("x")},
			want:     "assets?q=x&skip=10",
		},
		{
			name:     "endpoint with existing query string and no parameters",
			endpoint: "project/1/report/raw?excludeBinaries=true",
			want:     "project/1/report/raw?excludeBinaries=true",
		},
		{
			name:     "endpoint with existing query string",
			endpoint: "project/p1/report/raw?excludeBinaries=true",
			params:   []attackforge.URLParam{attackforge.WithQuery("x"), attackforge.WithSkip(5)},
			want:     "project/p1/report/raw?excludeBinaries=true&q=x&skip=5",
		},
		{
			name:     "filter rendered verbatim",
			endpoint: "library/assets",
			params:   []attackforge.URLParam{attackforge.WithFilter(attackforge.ExternalIDFilter("host-1"))},
			want:     `library/assets?q={ external_id: { $eq: "host-1" } }`,
		},
		{
			name:     "nil filter is ignored",
			endpoint: "library/assets",
			params:   []attackforge.URLParam{attackforge.WithFilter(nil)},
			want:     "library/assets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, attackforge.BuildURL(tt.endpoint, tt.params...))
		})
	}
}

func TestFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter attackforge.Filter
		want   string
	}{
		{
			name:   "equality",
			filter: attackforge.Eq("external_id", "A-1"),
			want:   `{ external_id: { $eq: "A-1" } }`,
		},
		{
			name:   "equality escapes quotes and backslashes",
			filter: attackforge.Eq("name", `a"b\c`),
			want:   `{ name: { $eq: "a\"b\\c" } }`,
		},
		{
			name:   "tag match",
			filter: attackforge.PluginFilter("19506"),
			want:   `{custom_tags: { $elemMatch: { name: { $eq: "pluginID" }, value: { $eq: "19506" } } }}`,
		},
		{
			name:   "conjunction",
			filter: attackforge.And(attackforge.Eq("a", "1"), nil, attackforge.Eq("b", "2")),
			want:   `{ a: { $eq: "1" } }{ b: { $eq: "2" } }`,
		},
		{
			name:   "library scope",
			filter: attackforge.LibraryScope(attackforge.PluginFilter("7"), "Main Vulnerabilities"),
			want: `{custom_tags: { $elemMatch: { name: { $eq: "pluginID" }, value: { $eq: "7" } } }}` +
				`&belongs_to_library=Main%20Vulnerabilities`,
		},
		{
			name:   "library scope escapes reserved characters",
			filter: attackforge.LibraryScope(nil, "R&D=1+2"),
			want:   `&belongs_to_library=R%26D%3D1%2B2`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.String())
		})
	}
}
