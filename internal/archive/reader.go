package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
)

// EntryLines opens a period archive and returns the lines of the named
// csv entry. A missing archive surfaces as os.IsNotExist so callers can
// honor the feed's sparse contract; a present archive without the entry
// is an error.
func EntryLines(zipPath, entry string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", entry, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", entry, err)
		}
		return splitLines(string(data)), nil
	}

	return nil, fmt.Errorf("entry %s not found in %s", entry, zipPath)
}

// PeriodLines reads the canonical <label>.csv entry of <label>.zip.
func PeriodLines(zipPath, label string) ([]string, error) {
	return EntryLines(zipPath, label+".csv")
}

func splitLines(data string) []string {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = strings.TrimRight(data, "\n")
	if data == "" {
		return nil
	}
	return strings.Split(data, "\n")
}
