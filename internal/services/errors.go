package services

import "fmt"

// Service errors
var (
	ErrPageNotFound   = &ServiceError{Message: "page not found"}
	ErrSeasonRequired = &ServiceError{Message: "season is required"}
	ErrEmptyBatch     = &ServiceError{Message: "batch has no questions"}
	ErrBatchTooLarge  = &ServiceError{Message: fmt.Sprintf("batch may hold at most %d questions", MaxBatchSize)}
	ErrInvalidBaseURL = &ServiceError{Message: "base URL must start with http:// or https://"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// DraftError reports why one draft of a batch was rejected
type DraftError struct {
	Index int
	Err   error
}

func (e *DraftError) Error() string {
	return fmt.Sprintf("question %d: %v", e.Index+1, e.Err)
}

func (e *DraftError) Unwrap() error {
	return e.Err
}
