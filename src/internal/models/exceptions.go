package models

import "errors"

var (
	ErrRedisConnection = errors.New("redis connection error")
	ErrRedisGet        = errors.New("redis get error")
	ErrRedisSet        = errors.New("redis set error")
	ErrRedisDelete     = errors.New("redis delete error")
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionCreating = errors.New("error creating session")
	ErrSessionDeleting = errors.New("error deleting session")
)

var (
	ErrMissingCredentials = errors.New("missing user or session credentials")
	ErrSessionInvalid     = errors.New("invalid or expired session")
	ErrNotAuthorized      = errors.New("session does not belong to user")
)

var (
	ErrCredentialFormat   = errors.New("malformed password hash")
	ErrDuplicateAccount   = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("the username or password is incorrect")
)

var (
	ErrDatabaseQuery   = errors.New("database query error")
	ErrDatabaseInsert  = errors.New("database insert error")
	ErrDatabaseUpdate  = errors.New("database update error")
	ErrDatabaseDelete  = errors.New("database delete error")
	ErrRecordNotFound  = errors.New("record not found")
	ErrDuplicateRecord = errors.New("duplicate record")
)

var (
	ErrStorageUpload   = errors.New("storage upload error")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrInvalidFileType = errors.New("invalid file type")
)
