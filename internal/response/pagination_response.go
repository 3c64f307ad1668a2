package response

// MaxPageSize bounds page_size so window arithmetic stays in range.
const MaxPageSize = 100

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// NewPagination describes the page-th (1-based) window of total items.
func NewPagination(page, pageSize int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	from, to := 0, 0
	if int64(page) <= totalPages {
		from = (page-1)*pageSize + 1
		to = page * pageSize
		if int64(to) > total {
			to = int(total)
		}
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		HasMore:    int64(page) < totalPages,
		From:       from,
		To:         to,
	}
}
