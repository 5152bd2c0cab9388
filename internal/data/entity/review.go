package entity

type Review struct {
	BaseNoDelete
	BookID        int64 `db:"book_id"`
	AccountUserID int64 `db:"account_user_id"`
	Rating        int   `db:"rating"` // 1-5
}

// GenreRating is one row of the genre-scoped candidate pool.
type GenreRating struct {
	UserID int64 `db:"account_user_id"`
	BookID int64 `db:"book_id"`
	Rating int   `db:"rating"`
}

// TitledRating is a rating joined with the rated book's title.
type TitledRating struct {
	UserID int64  `db:"account_user_id"`
	BookID int64  `db:"book_id"`
	Title  string `db:"title"`
	Rating int    `db:"rating"`
}
