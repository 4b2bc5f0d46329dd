package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/example/room-booking/internal/slot"
)

const dateLayout = "2006-01-02"

var canonicalHeader = []string{"room_id", "date", "time"}

// WriteCSV writes the canonical lesson file: header room_id,date,time and one
// row per key ordered by date, then room.
func WriteCSV(w io.Writer, s Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(canonicalHeader); err != nil {
		return err
	}
	for _, k := range s.Keys() {
		row := []string{strconv.FormatInt(k.RoomID, 10), k.Date.Format(dateLayout), s[k].String()}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the canonical file atomically by renaming a temporary
// file into place.
func WriteCSVFile(path string, s Schedule) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".lessons-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, s); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadCSV parses a canonical lesson file. Duplicate keys are unioned.
func ReadCSV(r io.Reader) (Schedule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(canonicalHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Schedule{}, nil
		}
		return nil, err
	}
	for i, h := range canonicalHeader {
		if strings.TrimSpace(header[i]) != h {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, h)
		}
	}

	out := make(Schedule)
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		roomID, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: room_id: %w", line, err)
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: date: %w", line, err)
		}
		slots, err := slot.Parse(record[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out.Add(Key{RoomID: roomID, Date: date}, slots)
	}
}

// ReadCSVFile opens and parses a canonical lesson file.
func ReadCSVFile(path string) (Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
