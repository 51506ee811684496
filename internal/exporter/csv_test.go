package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cruxcli/internal/crux"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_WriteDomainRanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	writer := NewCSVWriter(nil)

	rows, err := writer.WriteDomainRanks(path, []crux.DomainRecord{
		{Domain: "example.com", Rank: 1000},
		{Domain: "quoted,domain.test", Rank: 5000},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3], "no BOM expected")
	assert.Equal(t, "domain,rank\nexample.com,1000\n\"quoted,domain.test\",5000\n", string(raw))

	assert.Equal(t, [][]string{
		{"domain", "rank"},
		{"example.com", "1000"},
		{"quoted,domain.test", "5000"},
	}, readCSV(t, path))
}

func TestCSVWriter_TruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,content\nmore,rows\nand,more\n"), 0644))

	writer := NewCSVWriter(nil)
	_, err := writer.WriteDomainRanks(path, []crux.DomainRecord{{Domain: "a.test", Rank: 1}})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"domain", "rank"}, {"a.test", "1"}}, readCSV(t, path))
}

func TestCSVWriter_EmptyRecordsWritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows, err := NewCSVWriter(nil).WriteDomainRanks(path, nil)
	require.NoError(t, err)
	assert.Zero(t, rows)

	assert.Equal(t, [][]string{{"domain", "rank"}}, readCSV(t, path))
}

func TestCSVWriter_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewCSVWriter(nil).WriteDomainRanks(filepath.Join(blocker, "out.csv"), nil)
	assert.Error(t, err)
}

func TestStreamWriter_CountsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")
	stream, err := NewCSVWriter(nil).CreateStreamWriter(path, DomainRankHeader)
	require.NoError(t, err)

	require.NoError(t, stream.WriteDomainRank(crux.DomainRecord{Domain: "a.test", Rank: 1}))
	require.NoError(t, stream.WriteRecord([]string{"b.test", "2"}))
	assert.Equal(t, 2, stream.Rows())
	require.NoError(t, stream.Close())

	assert.Len(t, readCSV(t, path), 3)
}
