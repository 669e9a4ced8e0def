package crud

// Page wraps one page of a collection for template rendering
type Page struct {
	Objects    []Record
	Number     int
	PerPage    int
	TotalCount int
	TotalPages int
}

// Paginate slices objects into the 1-based page number. Out-of-range page
// numbers are clamped into the valid range, so page 1 of an empty collection
// and the last page for oversized numbers are always returned.
func Paginate(objects []Record, perPage, number int) Page {
	if perPage < 1 {
		perPage = 1
	}

	total := len(objects)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Objects:    objects[start:end],
		Number:     number,
		PerPage:    perPage,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// HasNext reports whether a later page exists
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrevious reports whether an earlier page exists
func (p Page) HasPrevious() bool {
	return p.Number > 1
}

// NextNumber returns the following page number, clamped to the last page
func (p Page) NextNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.Number
}

// PreviousNumber returns the preceding page number, clamped to the first page
func (p Page) PreviousNumber() int {
	if p.HasPrevious() {
		return p.Number - 1
	}
	return p.Number
}
