package schema

// CatalogDirectorTable represents the 'catalog.director' table
type CatalogDirectorTable struct {
	Table string
	ID    string
	Name  string
}

// CatalogDirector is the schema definition for catalog.director
var CatalogDirector = CatalogDirectorTable{
	Table: "catalog.director",
	ID:    "id",
	Name:  "name",
}

func (t CatalogDirectorTable) Columns() []string {
	return []string{t.ID, t.Name}
}
