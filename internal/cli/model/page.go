package model

// Page: конверт постраничной выдачи, вычисленный сервером.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Normalize приводит номера страниц к 1 ≤ current_page, 1 ≤ last_page.
// Соотношение current_page ≤ last_page не исправляется: это решает вызывающий код.
func (p *Page[T]) Normalize() {
	if p.LastPage < 1 {
		p.LastPage = 1
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if p.Total < 0 {
		p.Total = 0
	}
}

// Stale сообщает, что сервер вернул страницу за пределами набора данных.
func (p Page[T]) Stale() bool {
	return p.CurrentPage > p.LastPage
}
