package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	streaming "github.com/apsaltis/ML-Pipelines"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// syncBuffer makes a bytes.Buffer safe against the periodic flusher
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func createSinkRow(t *testing.T, id int64, name string) *streaming.Row {
	schema := streaming.CreateSchema()
	_, err := schema.CreateColumn("id", streaming.Int64ColumnType)
	require.Nil(t, err)
	_, err = schema.CreateColumn("name", streaming.StringColumnType)
	require.Nil(t, err)
	row := streaming.CreateRow(schema)
	require.Nil(t, row.SetInt64("id", id))
	require.Nil(t, row.SetString("name", name))
	return row
}

func TestConsoleFlushesEveryRow(t *testing.T) {
	var buf syncBuffer
	w := Console(&buf, 0)
	defer w.Close()

	require.Nil(t, w.Write(createSinkRow(t, 1, "ada")))
	require.Nil(t, w.Write(createSinkRow(t, 2, "grace")))
	// interval 0: output is visible without an explicit flush
	require.Equal(t, "{id: 1, name: ada}\n{id: 2, name: grace}\n", buf.String())
}

func TestDelimitedToJoinsColumnValues(t *testing.T) {
	var buf syncBuffer
	w := DelimitedTo(&buf, ",", 0)
	defer w.Close()

	require.Nil(t, w.Write(createSinkRow(t, 7, "ada")))
	require.Equal(t, "7,ada\n", buf.String())
}

func TestPeriodicFlusher(t *testing.T) {
	var buf syncBuffer
	w := Console(&buf, 5*time.Millisecond)
	require.Nil(t, w.Write(createSinkRow(t, 1, "ada")))

	require.Eventually(t, func() bool {
		return buf.String() == "{id: 1, name: ada}\n"
	}, time.Second, time.Millisecond)
	require.Nil(t, w.Close())
}

func TestCloseFlushesBufferedRows(t *testing.T) {
	var buf syncBuffer
	// a long interval keeps the periodic flusher out of the way
	w := Console(&buf, time.Hour)
	require.Nil(t, w.Write(createSinkRow(t, 1, "ada")))
	require.Nil(t, w.Close())
	require.Equal(t, "{id: 1, name: ada}\n", buf.String())
}

func TestTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	w, err := TextFile(path, 0)
	require.Nil(t, err)
	require.Nil(t, w.Write(createSinkRow(t, 1, "ada")))
	require.Nil(t, w.Close())

	content, err := os.ReadFile(path)
	require.Nil(t, err)
	require.Equal(t, "{id: 1, name: ada}\n", string(content))
}

func TestDelimitedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")
	w, err := Delimited(path, "\t", 0)
	require.Nil(t, err)
	require.Nil(t, w.Write(createSinkRow(t, 1, "ada")))
	require.Nil(t, w.Write(createSinkRow(t, 2, "grace")))
	require.Nil(t, w.Close())

	content, err := os.ReadFile(path)
	require.Nil(t, err)
	require.Equal(t, "1\tada\n2\tgrace\n", string(content))
}
