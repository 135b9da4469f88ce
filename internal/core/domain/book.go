package domain

import "time"

type Book struct {
	ID              string
	Title           string
	Author          string
	ISBN            *string
	PublicationYear *int
	Category        *string
	Description     *string
	IsAvailable     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type BookDraft struct {
	Title           string
	Author          string
	ISBN            *string
	PublicationYear *int
	Category        *string
	Description     *string
}

type BookPatch struct {
	Title           Optional[string]
	Author          Optional[string]
	ISBN            Optional[*string]
	PublicationYear Optional[*int]
	Category        Optional[*string]
	Description     Optional[*string]
	IsAvailable     Optional[bool]
}

// NewBook builds an available book stamped with now.
func NewBook(d BookDraft, now time.Time) Book {
	return Book{
		Title:           d.Title,
		Author:          d.Author,
		ISBN:            d.ISBN,
		PublicationYear: d.PublicationYear,
		Category:        d.Category,
		Description:     d.Description,
		IsAvailable:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Apply copies the present fields of p onto b. It does not touch UpdatedAt.
func (b *Book) Apply(p BookPatch) {
	if v, ok := p.Title.Get(); ok {
		b.Title = v
	}
	if v, ok := p.Author.Get(); ok {
		b.Author = v
	}
	if v, ok := p.ISBN.Get(); ok {
		b.ISBN = v
	}
	if v, ok := p.PublicationYear.Get(); ok {
		b.PublicationYear = v
	}
	if v, ok := p.Category.Get(); ok {
		b.Category = v
	}
	if v, ok := p.Description.Get(); ok {
		b.Description = v
	}
	if v, ok := p.IsAvailable.Get(); ok {
		b.IsAvailable = v
	}
}
