package bindings

import (
	"errors"
	"fmt"
	"time"

	"github.com/dennisdiepolder/availability/internal/types"
)

// DecodeSchedule reads one ScheduleRow per table row for the hour bucket of now
func DecodeSchedule(t Table, l ScheduleLayout, loc *time.Location, now time.Time) ([]types.ScheduleRow, error) {
	if !t.Has(l.Name) {
		return nil, fmt.Errorf("schedule name column %q: %w", l.Name, types.ErrMissingColumn)
	}
	hourCol := l.HourColumn(loc, now)
	if !t.Has(hourCol) {
		return nil, fmt.Errorf("schedule hour column %q: %w", hourCol, types.ErrMissingColumn)
	}

	n := t.Rows()
	rows := make([]types.ScheduleRow, 0, n)
	for i := 0; i < n; i++ {
		name := t.Cell(l.Name, i)
		if name == "" {
			continue
		}
		rows = append(rows, types.ScheduleRow{
			PersonName:  name,
			HourCode:    types.ParseHourCode(t.Cell(hourCol, i)),
			OutOfOffice: truthy(t.Cell(l.OOO, i)),
		})
	}
	return rows, nil
}

// DecodeStatus reads the live status table
func DecodeStatus(t Table, l StatusLayout) ([]types.LiveStatusRow, error) {
	if !t.Has(l.Name) {
		return nil, fmt.Errorf("status name column %q: %w", l.Name, types.ErrMissingColumn)
	}
	if !t.Has(l.Status) {
		return nil, fmt.Errorf("status text column %q: %w", l.Status, types.ErrMissingColumn)
	}

	n := t.Rows()
	rows := make([]types.LiveStatusRow, 0, n)
	for i := 0; i < n; i++ {
		name := t.Cell(l.Name, i)
		if name == "" {
			continue
		}
		rows = append(rows, types.LiveStatusRow{
			PersonName:      name,
			RawStatusText:   t.Cell(l.Status, i),
			MinutesInStatus: minutes(t.Cell(l.Minutes, i)),
		})
	}
	return rows, nil
}

// DecodeOOO reads the names listed in the out-of-office table
func DecodeOOO(t Table, l OOOLayout) ([]string, error) {
	if !t.Has(l.Name) {
		return nil, fmt.Errorf("ooo name column %q: %w", l.Name, types.ErrMissingColumn)
	}
	n := t.Rows()
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if name := t.Cell(l.Name, i); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// ChatCount counts waiting chats in the chats trigger table
func ChatCount(t Table, l ChatsLayout) int {
	if l.Column == "" {
		return t.Rows()
	}
	count := 0
	for i, n := 0, t.Rows(); i < n; i++ {
		if t.Cell(l.Column, i) != "" {
			count++
		}
	}
	return count
}

// Decoded is every binding decoded for one refresh
type Decoded struct {
	Schedule   []types.ScheduleRow
	Live       []types.LiveStatusRow
	OOO        []string
	Chats      int
	HasChats   bool
	UsedLegacy bool
}

// Decode turns a store snapshot into rows for the hour bucket of now. A
// section that fails to decode is left empty and its error is joined into
// the returned error; the rest still decode.
func Decode(snap map[Kind]Entry, l Layout, loc *time.Location, now time.Time) (Decoded, error) {
	var d Decoded
	var errs []error

	if e, ok := snap[KindSchedule]; ok {
		rows, err := DecodeSchedule(e.Table, l.Schedule, loc, now)
		if err != nil {
			errs = append(errs, err)
		}
		d.Schedule = rows
	} else if e, ok := snap[KindLegacy]; ok {
		rows, err := DecodeSchedule(e.Table, l.Legacy, loc, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("legacy worksheet: %w", err))
		}
		d.Schedule = rows
		d.UsedLegacy = true
	}

	if e, ok := snap[KindStatus]; ok {
		rows, err := DecodeStatus(e.Table, l.Status)
		if err != nil {
			errs = append(errs, err)
		}
		d.Live = rows
	}

	if e, ok := snap[KindOOO]; ok {
		names, err := DecodeOOO(e.Table, l.OOO)
		if err != nil {
			errs = append(errs, err)
		}
		d.OOO = names
	}

	if e, ok := snap[KindChats]; ok {
		d.Chats = ChatCount(e.Table, l.Chats)
		d.HasChats = true
	}

	return d, errors.Join(errs...)
}
