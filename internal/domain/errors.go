package domain

import "errors"

var (
	// ErrItemNotFound is returned when an item id does not exist
	ErrItemNotFound = errors.New("item not found")

	// ErrCompetitorItemNotFound is returned when no competitor listing carries the given barcode
	ErrCompetitorItemNotFound = errors.New("competitor item not found by barcode")

	// ErrTagNotFound is returned when a tag id does not exist
	ErrTagNotFound = errors.New("tag not found")

	// ErrScheduleNotFound is returned when a schedule id does not exist
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrEmptyBarcode is returned when a manual match supplies a blank barcode
	ErrEmptyBarcode = errors.New("barcode must not be empty")

	// ErrEmptyTagName is returned when a tag name is empty after trimming
	ErrEmptyTagName = errors.New("tag name must not be empty")

	// ErrInvalidCron is returned when a cron expression fails to parse
	ErrInvalidCron = errors.New("invalid cron expression")
)
