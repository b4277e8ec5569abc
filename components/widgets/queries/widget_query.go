package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	widgets "github.com/edgekit/go-widgets/components/widgets"
)

// WidgetAreaInput identifies an area request for a viewer.
type WidgetAreaInput struct {
	Viewer   widgets.ViewerContext
	AreaCode string
}

type areaService interface {
	ResolveArea(ctx context.Context, viewer widgets.ViewerContext, areaCode string) (widgets.ResolvedArea, error)
}

// WidgetAreaQuery fetches widgets for a specific area.
type WidgetAreaQuery struct {
	service areaService
}

// NewWidgetAreaQuery builds the query.
func NewWidgetAreaQuery(service areaService) *WidgetAreaQuery {
	return &WidgetAreaQuery{service: service}
}

var _ gocommand.Querier[WidgetAreaInput, widgets.ResolvedArea] = (*WidgetAreaQuery)(nil)

// Query resolves an individual area for the viewer.
func (q *WidgetAreaQuery) Query(ctx context.Context, input WidgetAreaInput) (widgets.ResolvedArea, error) {
	return q.service.ResolveArea(ctx, input.Viewer, input.AreaCode)
}
