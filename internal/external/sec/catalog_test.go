package sec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractZipURLs(t *testing.T) {
	body := `{"resources":[
		{"url":"https://www.sec.gov/files/cnsfails201010a.zip"},
		{"url":"https://www.sec.gov/files/cnsfails201010b.zip"},
		{"url":"https://www.sec.gov/files/other.pdf"},
		{"url":"HTTPS://WWW.SEC.GOV/files/cnsp_sec201011a.zip"}
	]}`

	urls := ExtractZipURLs(body)
	require.Len(t, urls, 3)
	assert.Equal(t, "https://www.sec.gov/files/cnsfails201010a.zip", urls[0])
	assert.Equal(t, "https://www.sec.gov/files/cnsfails201010b.zip", urls[1])
}

func TestArchiveFileName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.sec.gov/files/cnsfails201010a.zip", "cnsfails201010a.zip"},
		{"https://www.sec.gov/files/data/cnsp_sec201011b.zip", "cnsp_sec201011b.zip"},
		{"https://www.sec.gov/", "file.zip"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, archiveFileName(tt.url), "url %s", tt.url)
	}
}

func TestIsFailsArchive(t *testing.T) {
	assert.True(t, isFailsArchive("cnsfails201010a.zip"))
	assert.True(t, isFailsArchive("CNSP_SEC201011b.zip"))
	assert.False(t, isFailsArchive("regsho.zip"))
	assert.False(t, isFailsArchive("readme.txt"))
}

func TestLedger_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous.json")

	l := LoadLedger(path)
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains("https://www.sec.gov/files/cnsfails201010a.zip"))

	require.NoError(t, l.Add("https://www.sec.gov/files/cnsfails201010a.zip"))
	require.NoError(t, l.Add("https://www.sec.gov/files/cnsfails201010a.zip")) // idempotent
	require.NoError(t, l.Add("https://www.sec.gov/files/cnsfails201010b.zip"))

	reloaded := LoadLedger(path)
	assert.Equal(t, 2, reloaded.Len())
	assert.True(t, reloaded.Contains("https://www.sec.gov/files/cnsfails201010a.zip"))
	assert.True(t, reloaded.Contains("https://www.sec.gov/files/cnsfails201010b.zip"))
	assert.False(t, reloaded.Contains("https://www.sec.gov/files/cnsfails201011a.zip"))
}

func TestLoadLedger_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	l := LoadLedger(path)
	assert.Equal(t, 0, l.Len())
}
