package entity

type Book struct {
	BaseNoDelete
	Title  string `db:"title"`
	Author string `db:"author"`
	Genre  string `db:"genre"`
}
