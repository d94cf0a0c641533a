package service

import "github.com/jyej0a/mysns/internal/model"

// normalizePage clamps client-supplied paging parameters. A limit of 0
// (absent query param) takes the default; anything above the cap is
// clamped rather than rejected.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = model.DefaultPageLimit
	}
	if limit > model.MaxPageLimit {
		limit = model.MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// pageOf derives the pagination block for a returned window. HasMore is
// the full-page heuristic: true exactly when the page came back full.
func pageOf(limit, offset, returned int) model.Pagination {
	return model.Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: returned == limit,
	}
}
