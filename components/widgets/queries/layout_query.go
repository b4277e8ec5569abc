package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	widgets "github.com/edgekit/go-widgets/components/widgets"
)

type layoutService interface {
	ConfigureLayout(ctx context.Context, viewer widgets.ViewerContext) (widgets.Layout, error)
}

// LayoutQuery executes read-only layout resolution.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[widgets.ViewerContext, widgets.Layout] = (*LayoutQuery)(nil)

// Query resolves the layout for the viewer.
func (q *LayoutQuery) Query(ctx context.Context, viewer widgets.ViewerContext) (widgets.Layout, error) {
	return q.service.ConfigureLayout(ctx, viewer)
}
