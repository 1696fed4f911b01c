package shareholders

import "errors"

var (
	ErrShareholderNotFound = errors.New("Shareholder not found")
	ErrShareholderInUse    = errors.New("Cannot delete shareholder with equity holdings or option grants")
)
