package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageQuery_Clean(t *testing.T) {
	tests := []struct {
		name string
		pq   PageQuery
		want PageQuery
	}{
		{name: "defaults", pq: PageQuery{}, want: PageQuery{Page: 1, Limit: DefaultPageLimit}},
		{name: "negative", pq: PageQuery{Page: -3, Limit: -1}, want: PageQuery{Page: 1, Limit: DefaultPageLimit}},
		{name: "max limit", pq: PageQuery{Page: 2, Limit: 1000}, want: PageQuery{Page: 2, Limit: MaxPageLimit}},
		{name: "kept", pq: PageQuery{Page: 4, Limit: 25}, want: PageQuery{Page: 4, Limit: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.pq.Clean()
			assert.Equal(t, tt.want, tt.pq)
		})
	}
}

func TestPaginateSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name string
		pq   PageQuery
		want Page[int]
	}{
		{
			name: "first page",
			pq:   PageQuery{Page: 1, Limit: 3},
			want: Page[int]{Docs: []int{1, 2, 3}, TotalDocs: 7, Limit: 3, Page: 1, TotalPages: 3, HasNextPage: true, NextPage: intPtr(2)},
		},
		{
			name: "middle page",
			pq:   PageQuery{Page: 2, Limit: 3},
			want: Page[int]{
				Docs: []int{4, 5, 6}, TotalDocs: 7, Limit: 3, Page: 2, TotalPages: 3,
				HasNextPage: true, HasPrevPage: true, NextPage: intPtr(3), PrevPage: intPtr(1),
			},
		},
		{
			name: "last page",
			pq:   PageQuery{Page: 3, Limit: 3},
			want: Page[int]{Docs: []int{7}, TotalDocs: 7, Limit: 3, Page: 3, TotalPages: 3, HasPrevPage: true, PrevPage: intPtr(2)},
		},
		{
			name: "out of range",
			pq:   PageQuery{Page: 9, Limit: 3},
			want: Page[int]{Docs: []int{}, TotalDocs: 7, Limit: 3, Page: 9, TotalPages: 3, HasPrevPage: true, PrevPage: intPtr(8)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaginateSlice(items, tt.pq))
		})
	}
}

func TestNewPage_empty(t *testing.T) {
	p := NewPage[string](nil, 0, PageQuery{})
	assert.NotNil(t, p.Docs)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
	assert.Nil(t, p.NextPage)
}

func TestCleanOrderings(t *testing.T) {
	allowed := []string{"createdAt", "views", "title"}
	def := DBOrdering{Field: "createdAt"}

	tests := []struct {
		name      string
		orderings []DBOrdering
		want      []DBOrdering
	}{
		{name: "empty uses default", want: []DBOrdering{def}},
		{name: "unknown dropped", orderings: []DBOrdering{{Field: "password"}}, want: []DBOrdering{def}},
		{
			name:      "case insensitive",
			orderings: []DBOrdering{{Field: "VIEWS", Ascending: true}, {Field: "lol"}, {Field: "title"}},
			want:      []DBOrdering{{Field: "views", Ascending: true}, {Field: "title"}},
		},
		{
			name:      "duplicates dropped",
			orderings: []DBOrdering{{Field: "views"}, {Field: "views", Ascending: true}},
			want:      []DBOrdering{{Field: "views"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanOrderings(tt.orderings, allowed, def))
		})
	}
}
