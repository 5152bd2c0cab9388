package response

import "book-recommendation/internal/data/entity"

type BookResponse struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

type GenreResponse struct {
	Name      string `json:"genre"`
	BookCount int64  `json:"book_count"`
}

func BookToResponse(book *entity.Book) BookResponse {
	return BookResponse{
		ID:     book.ID,
		Title:  book.Title,
		Author: book.Author,
		Genre:  book.Genre,
	}
}

// BooksToResponse never returns nil so the payload is always a JSON array
func BooksToResponse(books []*entity.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, book := range books {
		out = append(out, BookToResponse(book))
	}
	return out
}
