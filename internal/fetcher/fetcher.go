// Package fetcher downloads and parses the remote files the directory is
// built from: the community listing exports and the Census ZCTA shapefile.
package fetcher

import (
	"context"
	"io"
)

// Fetcher downloads remote data that is refreshed across runs.
type Fetcher interface {
	// DownloadIfChanged fetches the URL unless the server reports that the
	// given ETag still matches. Returns (body, etag, changed, error); when
	// the resource is unchanged, body is nil and changed is false.
	DownloadIfChanged(ctx context.Context, url string, etag string) (io.ReadCloser, string, bool, error)
}
