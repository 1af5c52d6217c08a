package sec

import (
	"encoding/json"
	"fmt"
	"os"
)

// Ledger records which archive URLs were already downloaded so repeated
// syncs only fetch new half-month files. Persisted as a small JSON file
// next to the data directory.
type Ledger struct {
	path       string
	downloaded []string
	seen       map[string]struct{}
}

type ledgerState struct {
	Downloaded []string `json:"downloaded"`
}

// LoadLedger reads the ledger at path, starting empty when the file does
// not exist or is corrupt.
func LoadLedger(path string) *Ledger {
	l := &Ledger{
		path: path,
		seen: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return l
	}

	var state ledgerState
	if err := json.Unmarshal(data, &state); err != nil {
		return l
	}

	for _, url := range state.Downloaded {
		if _, dup := l.seen[url]; dup {
			continue
		}
		l.seen[url] = struct{}{}
		l.downloaded = append(l.downloaded, url)
	}
	return l
}

// Contains reports whether url was already downloaded.
func (l *Ledger) Contains(url string) bool {
	_, ok := l.seen[url]
	return ok
}

// Add records url and persists the ledger immediately, so an interrupted
// sync never re-downloads completed archives.
func (l *Ledger) Add(url string) error {
	if l.Contains(url) {
		return nil
	}
	l.seen[url] = struct{}{}
	l.downloaded = append(l.downloaded, url)
	return l.save()
}

// Len returns the number of recorded URLs.
func (l *Ledger) Len() int {
	return len(l.downloaded)
}

func (l *Ledger) save() error {
	data, err := json.MarshalIndent(ledgerState{Downloaded: l.downloaded}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
