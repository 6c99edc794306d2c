package filestore

import (
	"io"
	"time"
)

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "ddl/mysql/app/users.sql").
	Key string `json:"key"`

	// Size is the byte size of the object. -1 if unknown.
	Size int64 `json:"size"`

	ContentType string `json:"contentType,omitempty"`

	// ETag is the object's entity tag as returned by the backend, without
	// quotes. For single-part uploads it is the hex MD5 of the content.
	ETag string `json:"etag"`

	LastModified time.Time `json:"lastModified"`

	// IsDir is true when the entry represents a virtual directory (prefix),
	// not an actual stored object.
	IsDir bool `json:"isDir,omitempty"`
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading to avoid resource leaks.
type Object interface {
	io.ReadCloser

	// Info returns the metadata for this object.
	Info() *ObjectInfo
}

// ListOptions controls how ListObjects filters results.
type ListOptions struct {
	// Prefix restricts results to objects whose key starts with this string.
	Prefix string

	// Recursive lists every object under the prefix instead of grouping
	// virtual directories into IsDir entries.
	Recursive bool

	// Limit caps the number of results returned. 0 means no limit.
	Limit int
}

// PutOptions describes an object being written.
type PutOptions struct {
	ContentType string
}
