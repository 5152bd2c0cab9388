package request

type BookRequest struct {
	Title  string `json:"title" validate:"required,max=255"`
	Author string `json:"author" validate:"required,max=255"`
	Genre  string `json:"genre" validate:"required,max=100"`
}
