package shareclasses

import "errors"

var (
	ErrShareClassNotFound = errors.New("Share class not found")
	ErrShareClassInUse    = errors.New("Cannot delete share class that is in use")
)
