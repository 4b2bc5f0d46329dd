package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/example/room-booking/internal/semester"
	"github.com/example/room-booking/internal/slot"
)

// ErrMissingColumn is returned when a scraped file lacks a required header.
var ErrMissingColumn = errors.New("importer: missing column")

var fileNamePattern = regexp.MustCompile(`^(\d+)_(\d+)\.csv$`)

// Converter parses scraped timetable files.
type Converter struct {
	Calendar semester.Calendar
	Lookup   RoomLookup
	Logger   *slog.Logger
}

// NewConverter returns a converter anchored at calendar using the default
// room table.
func NewConverter(calendar semester.Calendar, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{Calendar: calendar, Lookup: DefaultRoomLookup, Logger: logger}
}

// ConvertDir parses every "<building>_<classroom>.csv" file in dir. Files
// that do not match the naming convention or name an unknown classroom are
// skipped with a warning.
func (c *Converter) ConvertDir(ctx context.Context, dir string) (Schedule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schedule dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make(Schedule)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		schedule, err := c.ConvertFile(filepath.Join(dir, name))
		if err != nil {
			c.Logger.WarnContext(ctx, "schedule file skipped", "file", name, "error", err)
			continue
		}
		out.Merge(schedule)
	}

	c.Logger.InfoContext(ctx, "schedule files converted", "files", len(names), "lessons", len(out))
	return out, nil
}

// ConvertFile parses one scraped file. The classroom number is the last three
// digits of the classroom part of the file name.
func (c *Converter) ConvertFile(path string) (Schedule, error) {
	name := filepath.Base(path)
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("file name %q does not match <building>_<classroom>.csv", name)
	}
	classroom := m[2]
	if len(classroom) > 3 {
		classroom = classroom[len(classroom)-3:]
	}
	number, _ := strconv.Atoi(classroom)
	lookup := c.Lookup
	if lookup == nil {
		lookup = DefaultRoomLookup
	}
	roomID, ok := lookup(number)
	if !ok {
		return nil, fmt.Errorf("classroom %s is not in the room table", classroom)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.Convert(f, classroom, roomID)
}

// Convert parses rows of one classroom. Rows with an undecodable time slot,
// evening-only periods or no weeks are dropped.
func (c *Converter) Convert(r io.Reader, classroom string, roomID int64) (Schedule, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Schedule{}, nil
		}
		return nil, err
	}
	cols := indexColumns(header)
	slotCol, ok := cols["time_slot"]
	if !ok {
		slotCol, ok = cols["timeslot"]
	}
	if !ok {
		return nil, fmt.Errorf("%w: time_slot", ErrMissingColumn)
	}
	weeksCol, ok := cols["weeks"]
	if !ok {
		return nil, fmt.Errorf("%w: weeks", ErrMissingColumn)
	}
	locationCol, hasLocation := cols["location"]
	weekTypeCol, hasWeekType := cols["week_type"]

	out := make(Schedule)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if hasLocation {
			if loc := field(record, locationCol); loc != classroom {
				c.Logger.Warn("location mismatch", "classroom", classroom, "location", loc, "line", line)
			}
		}

		ts, err := slot.ParseTimeslot(field(record, slotCol))
		if err != nil {
			c.Logger.Warn("time slot skipped", "classroom", classroom, "line", line, "error", err)
			continue
		}
		slots := slot.TransformSections(ts.Periods)
		if slots.IsEmpty() {
			continue
		}

		weeks, err := semester.ParseWeeks(field(record, weeksCol))
		if err != nil {
			c.Logger.Warn("weeks skipped", "classroom", classroom, "line", line, "error", err)
			continue
		}
		if hasWeekType {
			raw := field(record, weekTypeCol)
			wt, known := semester.ParseWeekType(raw)
			if !known && raw != "" {
				c.Logger.Warn("unknown week type, using full", "classroom", classroom, "week_type", raw, "line", line)
			}
			weeks = semester.FilterWeeks(weeks, wt)
		}

		for _, date := range c.Calendar.Dates(weeks, ts.Day) {
			out.Add(Key{RoomID: roomID, Date: date}, slots)
		}
	}
	return out, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
