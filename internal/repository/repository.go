package repository

// GroupCount is one bucket of a group-by aggregation.
type GroupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

const defaultPageSize = 20

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
