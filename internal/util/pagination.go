package util

// Paginate clamps page/size query values and converts them to an
// offset/limit pair.
func Paginate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return (page - 1) * size, size
}
