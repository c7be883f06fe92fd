package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
)

func TestPageRequest(t *testing.T) {
	tests := []struct {
		name   string
		req    model.PageRequest
		page   int
		size   int
		offset int
	}{
		{"zero value", model.PageRequest{}, 1, model.DefaultPageSize, 0},
		{"second page", model.PageRequest{Page: 2, PageSize: 10}, 2, 10, 10},
		{"negative", model.PageRequest{Page: -3, PageSize: -1}, 1, model.DefaultPageSize, 0},
		{"too large", model.PageRequest{Page: 1, PageSize: 1000}, 1, model.MaxPageSize, 0},
		{"huge page", model.PageRequest{Page: 461168601842738792, PageSize: 20}, model.MaxPage, 20, (model.MaxPage - 1) * 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.req.Normalize()
			gt.Number(t, n.Page).Equal(tt.page)
			gt.Number(t, n.PageSize).Equal(tt.size)
			gt.Number(t, tt.req.Offset()).Equal(tt.offset)
			gt.Number(t, tt.req.Limit()).Equal(tt.size)
		})
	}
}

func TestWindowAndPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	req := model.PageRequest{Page: 2, PageSize: 2}

	w := model.Window(items, req)
	gt.A(t, w).Length(2)
	gt.Number(t, w[0]).Equal(3)

	p := model.NewPage(w, len(items), req)
	gt.Number(t, p.TotalItems).Equal(5)
	gt.Number(t, p.TotalPages).Equal(3)
	gt.Number(t, p.Page).Equal(2)

	gt.A(t, model.Window(items, model.PageRequest{Page: 4, PageSize: 2})).Length(0)
	gt.A(t, model.Window(items, model.PageRequest{Page: 3, PageSize: 2})).Length(1)

	gt.A(t, model.Window(items, model.PageRequest{Page: 461168601842738792, PageSize: 20})).Length(0)

	empty := model.NewPage[int](nil, 0, model.PageRequest{})
	gt.Value(t, empty.Items).NotNil()
	gt.Number(t, empty.TotalPages).Equal(0)
}
