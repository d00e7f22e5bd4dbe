package models

// PageRequest is a validated page/limit pair; Page starts at 1.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// NewPagination derives page metadata from the filtered total. It does not
// depend on how many rows the page itself returned.
func NewPagination(req PageRequest, total int64) Pagination {
	totalPages := 0
	if req.Limit > 0 {
		totalPages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}

	return Pagination{
		CurrentPage:  req.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: req.Limit,
		HasNextPage:  req.Page < totalPages,
		HasPrevPage:  req.Page > 1,
	}
}
