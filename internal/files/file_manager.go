package files

import (
	"context"
	"io"
)

// FileManager stages request-scoped image data on disk. Every returned path
// is unique to its call, and cleanup removes it.
type FileManager interface {
	DownloadToTemp(ctx context.Context, fileID string) (localPath string, cleanup func(), err error)
	WriteTemp(r io.Reader, ext string) (localPath string, cleanup func(), err error)
}
