package viewport

import "errors"

var (
	errInvalidScale   = errors.New("viewport: scale must be > 0")
	errInvalidMaxIter = errors.New("viewport: max_iter must be >= 64")
)
