package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/importer"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConvertWritesCSV(t *testing.T) {
	t.Setenv("BOOKING_SEMESTER_START", "2025-02-17")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "906_3101.csv"),
		[]byte("time_slot,location,weeks,week_type\n10102,101,1-2,full\n"), 0o600))
	out := filepath.Join(t.TempDir(), "lessons.csv")

	stdout, err := execute(t, "convert", "--dir", dir, "--out", out)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "converted 2 room-days")

	schedule, err := importer.ReadCSVFile(out)
	require.NoError(t, err)
	assert.Len(t, schedule, 2)
}

func TestSyncLoadsCSV(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "booking.db") + "?_pragma=foreign_keys(1)"
	t.Setenv("BOOKING_DB_DSN", dsn)
	in := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(in, []byte("room_id,date,time\n"), 0o600))

	stdout, err := execute(t, "sync", "--in", in)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "lessons inserted=0 updated=0 deleted=0")
}

func TestFailuresAreReported(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		_, err := execute(t, "sync", "--in", filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})

	t.Run("missing source dir", func(t *testing.T) {
		_, err := execute(t, "convert", "--dir", filepath.Join(t.TempDir(), "nope"), "--out", filepath.Join(t.TempDir(), "x.csv"))
		assert.Error(t, err)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		t.Setenv("BOOKING_CRAWLER_ATTEMPTS", "zero")
		_, err := execute(t, "crawl")
		assert.Error(t, err)
	})

	t.Run("unknown command", func(t *testing.T) {
		_, err := execute(t, "explode")
		assert.Error(t, err)
	})
}

func TestCrawlWithoutCommandIsNoop(t *testing.T) {
	_, err := execute(t, "crawl")
	assert.NoError(t, err)
}
