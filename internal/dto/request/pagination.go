package request

import "book-recommendation/pkg/utils"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"page_size" validate:"min=1,max=100"`
}

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.Page, p.Limit())
}

func (p PaginatedRequest) Limit() int {
	if p.PerPage < 1 {
		return DefaultPageSize
	}
	if p.PerPage > MaxPageSize {
		return MaxPageSize
	}
	return p.PerPage
}
