package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-widgetgrid/components/dashboard"
)

type boardService interface {
	Board(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Board, error)
}

// BoardQuery renders the viewer's board without mutating it.
type BoardQuery struct {
	service boardService
}

// NewBoardQuery builds the query.
func NewBoardQuery(service boardService) *BoardQuery {
	return &BoardQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, dashboard.Board] = (*BoardQuery)(nil)

// Query resolves the board for the viewer.
func (q *BoardQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Board, error) {
	return q.service.Board(ctx, viewer)
}
