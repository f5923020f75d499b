package schema

// CatalogMovieTable represents the 'catalog.movie' table
type CatalogMovieTable struct {
	Table      string
	ID         string
	Title      string
	DirectorID string
}

// CatalogMovie is the schema definition for catalog.movie
var CatalogMovie = CatalogMovieTable{
	Table:      "catalog.movie",
	ID:         "id",
	Title:      "title",
	DirectorID: "directorid",
}

func (t CatalogMovieTable) Columns() []string {
	return []string{t.ID, t.Title, t.DirectorID}
}
