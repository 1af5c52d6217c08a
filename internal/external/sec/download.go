package sec

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/bondquant/ftdfeed/internal/archive"
)

// secFilesReferer unlocks downloads that 403 without a sec.gov referer.
const secFilesReferer = "https://www.sec.gov/files/data/fails-deliver-data/"

// DownloadResult summarizes one sync run.
type DownloadResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// DownloadArchives fetches every not-yet-downloaded archive URL into
// destDir, recording completions in the ledger. Individual download
// failures are logged and counted, not fatal: the next sync retries
// them.
func (c *Client) DownloadArchives(ctx context.Context, urls []string, destDir string, ledger *Ledger) (DownloadResult, error) {
	var result DownloadResult

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return result, fmt.Errorf("create download dir: %w", err)
	}

	for _, archiveURL := range urls {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if ledger.Contains(archiveURL) {
			result.Skipped++
			continue
		}

		name := archiveFileName(archiveURL)
		if !isFailsArchive(name) {
			result.Skipped++
			continue
		}

		if err := c.downloadOne(ctx, archiveURL, filepath.Join(destDir, name)); err != nil {
			c.logger.WithError(err).WithField("url", archiveURL).Error("Download failed")
			result.Failed++
			continue
		}

		if err := ledger.Add(archiveURL); err != nil {
			return result, fmt.Errorf("update ledger: %w", err)
		}

		c.logger.WithField("file", name).Info("Downloaded archive")
		result.Downloaded++
	}

	return result, nil
}

// downloadOne streams one archive to disk, retrying a 403 once with the
// sec.gov referer.
func (c *Client) downloadOne(ctx context.Context, archiveURL, dest string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.httpClient.GetWithHeaders(ctx, archiveURL, c.headers())
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		headers := c.headers()
		headers["Referer"] = secFilesReferer
		resp, err = c.httpClient.GetWithHeaders(ctx, archiveURL, headers)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err != nil || closeErr != nil || written == 0 {
		os.Remove(tmp)
		if err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		if closeErr != nil {
			return fmt.Errorf("close file: %w", closeErr)
		}
		return fmt.Errorf("empty response body")
	}

	return os.Rename(tmp, dest)
}

// archiveFileName derives a safe local file name from an archive URL.
func archiveFileName(archiveURL string) string {
	u, err := url.Parse(archiveURL)
	if err != nil {
		return "file.zip"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "file.zip"
	}
	return name
}

// isFailsArchive reports whether the file name matches a known fails
// export prefix; other zips linked from the catalog are ignored.
func isFailsArchive(name string) bool {
	return archive.IsRawExport(name)
}
