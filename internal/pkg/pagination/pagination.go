package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 1000
)

type Params struct {
	Page    int
	PerPage int
}

// Normalize applies defaults and caps PerPage at MaxPerPage.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func FromQuery(q url.Values) Params {
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return Params{Page: page, PerPage: perPage}.Normalize()
}

type Meta struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	Pages      int  `json:"pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
	NextNumber int  `json:"next_num,omitempty"`
	PrevNumber int  `json:"prev_num,omitempty"`
}

func NewMeta(p Params, total int) Meta {
	p = p.Normalize()
	pages := 0
	if total > 0 {
		pages = (total + p.PerPage - 1) / p.PerPage
	}
	m := Meta{
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   total,
		Pages:   pages,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}
	if m.HasNext {
		m.NextNumber = p.Page + 1
	}
	if m.HasPrev {
		m.PrevNumber = p.Page - 1
	}
	return m
}
