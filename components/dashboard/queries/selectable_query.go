package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-widgetgrid/components/dashboard"
)

type selectableService interface {
	SelectableTypes(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.CatalogEntry, error)
}

// SelectableTypesQuery lists the widget types a viewer may still add.
type SelectableTypesQuery struct {
	service selectableService
}

// NewSelectableTypesQuery builds the query.
func NewSelectableTypesQuery(service selectableService) *SelectableTypesQuery {
	return &SelectableTypesQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, []dashboard.CatalogEntry] = (*SelectableTypesQuery)(nil)

// Query returns the selectable catalog entries.
func (q *SelectableTypesQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.CatalogEntry, error) {
	return q.service.SelectableTypes(ctx, viewer)
}
