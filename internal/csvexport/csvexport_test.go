package csvexport_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/sqlagent/internal/csvexport"
	"github.com/petasbytes/sqlagent/internal/sqlite"
)

func TestNormalize_Shapes(t *testing.T) {
	rows, err := csvexport.Normalize([]any{[]any{int64(1), "Alice"}, "solo", []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1), "Alice"}, {"solo"}, {"a", "b"}}, rows)
}

func TestNormalize_TupleText(t *testing.T) {
	rows, err := csvexport.Normalize(`[(1, 'Alice'), (2, 'Bob')]`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1), "Alice"}, {int64(2), "Bob"}}, rows)
}

func TestNormalize_Rejects(t *testing.T) {
	for _, in := range []any{"not a list", 42, map[string]any{"a": 1}, nil} {
		_, err := csvexport.Normalize(in)
		assert.ErrorIs(t, err, csvexport.ErrNotRows, "input %#v", in)
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "out.csv", csvexport.Filename("out"))
	assert.Equal(t, "OUT.CSV", csvexport.Filename("OUT.CSV"))
	assert.Equal(t, "report.txt.csv", csvexport.Filename("report.txt"))
}

func TestEncode(t *testing.T) {
	b, err := csvexport.Encode([][]any{
		{int64(1), "Alice", nil},
		{2.0, "has,comma", true},
		{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), `say "hi"`, []byte("x")},
	})
	require.NoError(t, err)
	want := "1,Alice,\r\n" +
		"2.0,\"has,comma\",True\r\n" +
		"2024-01-02,\"say \"\"hi\"\"\",b'x'\r\n"
	assert.Equal(t, want, string(b))
}

func TestEncode_TimesKeepOffsetAndClock(t *testing.T) {
	est := time.FixedZone("", -5*3600)
	b, err := csvexport.Encode([][]any{
		{time.Date(2024, 3, 5, 23, 30, 0, 0, est)},
		{time.Date(2024, 3, 5, 23, 30, 0, 500_000_000, time.UTC)},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05T23:30:00-05:00\r\n2024-03-05 23:30:00.5\r\n", string(b))
}

func TestEncode_DateTimeColumnsFromDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "dates.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE ev (d DATE, dt DATETIME, ts TIMESTAMP)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO ev VALUES
		('2024-01-02', '2024-01-02 00:00:00', '2024-03-05T23:30:00-05:00')`)
	require.NoError(t, err)

	res, err := sqlite.Execute(ctx, db, `SELECT d, dt, ts FROM ev`)
	require.NoError(t, err)
	b, err := csvexport.Encode(res.Values())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02,2024-01-02 00:00:00,2024-03-05T23:30:00-05:00\r\n", string(b))
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "files")

	abs, err := csvexport.Save(dir, [][]any{{int64(1), "Alice"}, {int64(2), "Bob"}}, "out")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.Equal(t, "out.csv", filepath.Base(abs))

	b, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "1,Alice\r\n2,Bob\r\n", string(b))
}

func TestSave_RejectsEscape(t *testing.T) {
	dir := t.TempDir()
	_, err := csvexport.Save(dir, [][]any{{"x"}}, "../escape")
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "escape.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSave_EmptyFilename(t *testing.T) {
	dir := t.TempDir()
	_, err := csvexport.Save(dir, [][]any{{"x"}}, "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_EMPTY_PATH")
}
