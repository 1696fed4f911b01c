package equity

import "errors"

var (
	ErrHoldingNotFound         = errors.New("Equity holding not found")
	ErrShareholderNotFound     = errors.New("Shareholder not found")
	ErrShareClassNotFound      = errors.New("Share class not found")
	ErrNegativeHoldingQuantity = errors.New("Holding quantity cannot go below zero")
)
