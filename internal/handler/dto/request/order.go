package request

import (
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/usecase/queries"
)

type ListOrdersQuery struct {
	Status string `form:"status"`
	After  string `form:"after"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (q *ListOrdersQuery) ToQuery() (queries.ListFilter, *queries.Cursor) {
	var filter queries.ListFilter
	if q.Status != "" {
		s := order.Status(q.Status)
		filter.Status = &s
	}
	var cursor *queries.Cursor
	if q.After != "" {
		cursor = &queries.Cursor{After: q.After}
	}
	return filter, cursor
}
