package storage

import "context"

// Store is the blob store surface the rest of the app depends on. Paths are
// bucket-relative; folders are plain key prefixes. Implementations report
// transport or auth failures as errs.ErrStoreUnavailable, missing objects as
// errs.ErrBlobNotFound, and occupied paths (non-upsert upload) as
// errs.ErrBlobExists.
type Store interface {
	// Upload writes data at path and returns the stored path. With upsert
	// set, an existing object at path is overwritten; without it, an
	// occupied path is an error.
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string, upsert bool) (string, error)

	// PublicURL derives the public URL for a path. Pure; it does not
	// confirm the object exists.
	PublicURL(bucket, path string) string

	// Download reads the object at path.
	Download(ctx context.Context, bucket, path string) ([]byte, error)

	// List returns the keys under folder, lexicographically ordered. A
	// missing folder is an empty result, not an error.
	List(ctx context.Context, bucket, folder string) ([]string, error)

	// Copy duplicates the object at from to to, overwriting to. The target
	// store has no server-side copy, so this is a download followed by an
	// upsert upload.
	Copy(ctx context.Context, bucket, from, to string) error

	// Delete removes the object at path.
	Delete(ctx context.Context, bucket, path string) error

	// DeleteFolder removes every object under folder. A missing or empty
	// folder is a no-op.
	DeleteFolder(ctx context.Context, bucket, folder string) error
}
