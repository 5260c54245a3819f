package domain

import "errors"

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateCardNo is returned when an insert collides with an existing card number.
	ErrDuplicateCardNo = errors.New("card number already issued")
	// ErrInvalidCompany indicates a company failed validation.
	ErrInvalidCompany = errors.New("invalid company")
	// ErrInvalidQuestion indicates a question failed validation.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidDate indicates a DD/MM/YY date could not be parsed.
	ErrInvalidDate = errors.New("invalid date")
)
