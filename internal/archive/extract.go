package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// rawPrefixes are the file-name prefixes of genuine SEC fails exports.
// Period archives live in the same directory, so anything else stays
// untouched.
var rawPrefixes = [...]string{"cnsfails", "cnsp_sec"}

// IsRawExport reports whether a file name looks like a raw SEC fails
// export.
func IsRawExport(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range rawPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// ExtractRaw unpacks every raw export zip in dir flat into dir (the SEC
// raw exports hold a single text file each), removing each zip once its
// contents are out. Returns the extracted file paths.
func ExtractRaw(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read raw dir: %w", err)
	}

	var extracted []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".zip") {
			continue
		}
		if !IsRawExport(e.Name()) {
			continue
		}

		zipPath := filepath.Join(dir, e.Name())
		paths, err := extractOne(zipPath, dir)
		if err != nil {
			return extracted, fmt.Errorf("extract %s: %w", e.Name(), err)
		}
		extracted = append(extracted, paths...)

		if err := os.Remove(zipPath); err != nil {
			return extracted, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}

	return extracted, nil
}

func extractOne(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var paths []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		// Flatten: entry paths inside SEC zips are not trusted
		dest := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return paths, err
		}

		out, err := os.Create(dest)
		if err != nil {
			rc.Close()
			return paths, err
		}

		_, err = io.Copy(out, rc)
		rc.Close()
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return paths, err
		}

		paths = append(paths, dest)
	}

	return paths, nil
}
