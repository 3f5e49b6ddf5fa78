package service

type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

func newPage[T any](data []T, page, perPage int, total int64) Page[T] {
	last := 1
	if perPage > 0 && total > 0 {
		last = int((total + int64(perPage) - 1) / int64(perPage))
	}
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, CurrentPage: page, LastPage: last, PerPage: perPage, Total: total}
}
