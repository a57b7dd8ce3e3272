package utils

import "errors"

// Failure kinds shared by the browser, extraction and orchestration layers.
// Wrap them with fmt.Errorf("...: %w", ErrX) and test with errors.Is.
var (
	ErrNavigation      = errors.New("navigation failure")
	ErrContentNotReady = errors.New("content not ready")
	ErrExtraction      = errors.New("extraction failure")
	ErrFieldExtraction = errors.New("field extraction error")
)
