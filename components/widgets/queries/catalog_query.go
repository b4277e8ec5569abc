package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/edgekit/go-widgets/components/datasource"
)

// CatalogDirectory supplies the raw directories the source picker is built
// from. Implementations typically wrap the backend REST client.
type CatalogDirectory interface {
	CatalogInput(ctx context.Context) (datasource.CatalogInput, error)
}

// CatalogDirectoryFunc adapts a function to CatalogDirectory.
type CatalogDirectoryFunc func(ctx context.Context) (datasource.CatalogInput, error)

// CatalogInput calls the wrapped function.
func (f CatalogDirectoryFunc) CatalogInput(ctx context.Context) (datasource.CatalogInput, error) {
	return f(ctx)
}

// CatalogRequest scopes a catalog query. An empty request returns everything.
type CatalogRequest struct {
	Category datasource.Category `json:"category,omitempty"`
	Search   string              `json:"search,omitempty"`
}

// CatalogResult is the picker payload: category descriptors plus the entries
// matching the request.
type CatalogResult struct {
	Categories []datasource.CategoryDescriptor `json:"categories"`
	Entries    []datasource.Entry              `json:"entries"`
}

// CatalogQuery builds the selectable data-source catalog on demand.
type CatalogQuery struct {
	directory CatalogDirectory
	translate func(key string) string
}

// NewCatalogQuery builds the query. The translate function localizes category
// labels and may be nil.
func NewCatalogQuery(directory CatalogDirectory, translate func(key string) string) *CatalogQuery {
	return &CatalogQuery{directory: directory, translate: translate}
}

var _ gocommand.Querier[CatalogRequest, CatalogResult] = (*CatalogQuery)(nil)

// Query fetches directories, assembles the catalog, and filters it. Duplicate
// catalog entries are dropped rather than failing the whole query.
func (q *CatalogQuery) Query(ctx context.Context, req CatalogRequest) (CatalogResult, error) {
	input := datasource.CatalogInput{}
	if q.directory != nil {
		fetched, err := q.directory.CatalogInput(ctx)
		if err != nil {
			return CatalogResult{}, err
		}
		input = fetched
	}
	catalog, _ := datasource.BuildCatalog(input)
	entries := catalog.Entries()
	if req.Category != "" {
		entries = catalog.ByCategory(req.Category)
	}
	if req.Search != "" {
		entries = filterEntries(entries, catalog, req.Search)
	}
	return CatalogResult{
		Categories: datasource.LocalizedCategories(q.translate),
		Entries:    entries,
	}, nil
}

func filterEntries(scoped []datasource.Entry, catalog *datasource.Catalog, query string) []datasource.Entry {
	matched := catalog.Search(query)
	keep := make(map[datasource.SelectedItem]struct{}, len(matched))
	for _, entry := range matched {
		keep[entry.Key] = struct{}{}
	}
	var out []datasource.Entry
	for _, entry := range scoped {
		if _, ok := keep[entry.Key]; ok {
			out = append(out, entry)
		}
	}
	return out
}
