// Package fetcher resolves dataset sources to local files and reads tabular
// rows out of XLSX and CSV workbooks. Sources may be local paths, http(s) URLs
// or ftp URLs; remote sources are downloaded into a work directory first.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher downloads a remote resource.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, rawURL string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL into path and returns the bytes written.
	DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error)
}

// Resolver maps a source string to a readable local file.
type Resolver struct {
	HTTP Fetcher
	FTP  Fetcher
	// Dir receives downloaded files. Defaults to os.TempDir().
	Dir string
}

// NewResolver creates a Resolver backed by the default HTTP and FTP fetchers.
func NewResolver(dir string, httpOpts HTTPOptions, ftpOpts FTPOptions) *Resolver {
	return &Resolver{
		HTTP: NewHTTPFetcher(httpOpts),
		FTP:  NewFTPFetcher(ftpOpts),
		Dir:  dir,
	}
}

// IsRemote reports whether source names an http(s) or ftp resource.
func IsRemote(source string) bool {
	switch scheme(source) {
	case "http", "https", "ftp":
		return true
	}
	return false
}

func scheme(source string) string {
	i := strings.Index(source, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(source[:i])
}

// Resolve returns a local path for source, downloading it when it is remote.
// Local paths and file:// URLs are checked for existence and returned as is.
func (r *Resolver) Resolve(ctx context.Context, source string) (string, error) {
	if source == "" {
		return "", eris.New("fetcher: empty source")
	}

	if !IsRemote(source) {
		return resolveLocal(source)
	}
	f := r.HTTP
	if scheme(source) == "ftp" {
		f = r.FTP
	}
	if f == nil {
		return "", eris.Errorf("fetcher: no fetcher configured for %q", source)
	}

	dir := r.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetcher: create work dir")
	}

	dest := filepath.Join(dir, remoteFileName(source))
	n, err := f.DownloadToFile(ctx, source, dest)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: download %s", source)
	}
	zap.L().Info("fetcher: downloaded source",
		zap.String("source", source),
		zap.String("path", dest),
		zap.Int64("bytes", n),
	)
	return dest, nil
}

func resolveLocal(source string) (string, error) {
	switch scheme(source) {
	case "":
		return localPath(source)
	case "file":
		u, err := url.Parse(source)
		if err != nil {
			return "", eris.Wrapf(err, "fetcher: parse %q", source)
		}
		return localPath(u.Path)
	}
	return "", eris.Errorf("fetcher: unsupported source scheme in %q", source)
}

func localPath(p string) (string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: stat %s", p)
	}
	if info.IsDir() {
		return "", eris.Errorf("fetcher: %s is a directory", p)
	}
	return p, nil
}

// remoteFileName keeps the URL's base name so the extension still drives
// format detection after download.
func remoteFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "download"
	}
	return base
}

// writeFile copies body into a new file at dest.
func writeFile(dest string, body io.Reader) (int64, error) {
	file, err := os.Create(dest)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}
	n, err := io.Copy(file, body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}
