package db

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation performs a single store action and reports failure.
type Operation func() error

// RetryableFunc decides whether a failed attempt should be retried.
type RetryableFunc func(err error) bool

const DefaultMaxRetries = 3

// Try runs an operation with the default retry policy: duplicate-key errors
// are retried (the caller regenerates its random ID per attempt), everything
// else fails immediately.
func Try(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, IsDuplicateKeyError)
}

// WithRetries runs op up to 1+maxRetries times, retrying only when retryable
// says so, with a small incremental backoff between attempts.
func WithRetries(op Operation, maxRetries int, retryable RetryableFunc) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		if !retryable(err) {
			return err
		}
		time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
	}
	return err
}

// IsDuplicateKeyError reports whether err is a MongoDB duplicate key error
// (code 11000), in either a write or bulk-write exception.
func IsDuplicateKeyError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
