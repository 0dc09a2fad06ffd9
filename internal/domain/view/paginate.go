package view

import "privacydesk/internal/domain/request"

// Page is one slice of a sorted, filtered list plus the numbers the grid
// footer shows.
type Page struct {
	Items      []request.PrivacyRequest `json:"items"`
	Skip       int                      `json:"skip"`
	Take       int                      `json:"take"`
	TotalItems int                      `json:"totalItems"`
	TotalPages int                      `json:"totalPages"`
}

// Paginate slices list at [skip, skip+take). A skip at or past the end of
// the list resets to zero, which is how a stale page offset behaves when
// the filtered set shrinks. take <= 0 falls back to 10.
func Paginate(list []request.PrivacyRequest, skip, take int) Page {
	if take <= 0 {
		take = 10
	}
	if skip < 0 || skip >= len(list) {
		skip = 0
	}
	end := skip + take
	if end > len(list) {
		end = len(list)
	}
	totalPages := (len(list) + take - 1) / take
	if totalPages == 0 {
		totalPages = 1
	}
	return Page{
		Items:      append([]request.PrivacyRequest(nil), list[skip:end]...),
		Skip:       skip,
		Take:       take,
		TotalItems: len(list),
		TotalPages: totalPages,
	}
}
