package util

import "algoritmia_backend/pkg/validation"

const (
	DateFormat  = validation.DateFormat
	TimeFormat  = "2006-01-02 15:04:05"
	ClockFormat = "15:04"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// gin context keys
const (
	UserKey      = "user"
	RequestIDKey = "request_id"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	MaxExportRows = 10000
)
