package store

import "codeberg.org/mutker/energyctl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("store_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed  = errors.ErrorCode("store_schema_init_failed")
	ErrTransactionFailed = errors.ErrorCode("store_transaction_failed")

	// Storage Errors
	ErrStorageInit   = errors.ErrorCode("store_init_failed")
	ErrStorageAccess = errors.ErrorCode("store_access_failed")
	ErrStorageClose  = errors.ErrorCode("store_close_failed")

	// Domain Errors
	ErrInvalidDomain = errors.ErrorCode("store_invalid_domain")
)
