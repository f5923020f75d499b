package schema

// CatalogBookGenreTable represents the 'catalog.bookgenre' table
type CatalogBookGenreTable struct {
	Table   string
	BookID  string
	GenreID string
}

// CatalogBookGenre is the schema definition for catalog.bookgenre
var CatalogBookGenre = CatalogBookGenreTable{
	Table:   "catalog.bookgenre",
	BookID:  "bookid",
	GenreID: "genreid",
}

func (t CatalogBookGenreTable) Columns() []string {
	return []string{t.BookID, t.GenreID}
}
