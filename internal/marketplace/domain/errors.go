package domain

import "errors"

var (
	ErrItemNotFound  = errors.New("marketplace item not found")
	ErrAlreadySold   = errors.New("item is already sold")
	ErrBuyerNotFound = errors.New("buyer not found")
	ErrNotSeller     = errors.New("only the seller can delete this item")
	ErrNoImage       = errors.New("item has no image")
)
