package entity

// Genre is derived from books; there is no genres table.
type Genre struct {
	Name      string `db:"genre"`
	BookCount int64  `db:"book_count"`
}
