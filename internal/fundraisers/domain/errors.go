package domain

import "errors"

var (
	ErrFundraiserNotFound = errors.New("fundraiser not found")
	ErrNotCreator         = errors.New("only the creator can delete this fundraiser")
)
