package ports

import "context"

// FileWatcher reports changes to a single file.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type FileWatcher interface {
	// Watch blocks, invoking onChange after each coalesced burst of writes to
	// path, until ctx is done.
	Watch(ctx context.Context, path string, onChange func()) error
}
