package content

import (
	"strconv"
	"strings"

	"github.com/rpupo63/newsroom-backend/models"
)

// Page is one page of a post listing.
type Page struct {
	Number     int           `json:"page"`
	Size       int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	Total      int64         `json:"count"`
	Posts      []models.Post `json:"results"`
}

// ParsePage reads a 1-based page number. Anything that is not a positive
// integer means page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParsePageSize reads a page size, falling back to def and capping at max.
func ParsePageSize(raw string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.TotalPages }
func (p Page) PreviousNumber() int {
	return p.Number - 1
}
func (p Page) NextNumber() int {
	return p.Number + 1
}

// newPage clamps number into [1, last page] for total items of size per page.
func newPage(number, size int, total int64) Page {
	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	return Page{Number: number, Size: size, TotalPages: totalPages, Total: total, Posts: []models.Post{}}
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}
