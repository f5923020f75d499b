package schema

// CatalogAuthorTable represents the 'catalog.author' table
type CatalogAuthorTable struct {
	Table string
	ID    string
	Name  string
}

// CatalogAuthor is the schema definition for catalog.author
var CatalogAuthor = CatalogAuthorTable{
	Table: "catalog.author",
	ID:    "id",
	Name:  "name",
}

func (t CatalogAuthorTable) Columns() []string {
	return []string{t.ID, t.Name}
}
