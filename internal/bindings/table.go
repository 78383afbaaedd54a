// Package bindings holds the column-oriented tables pushed by the host BI
// tool and decodes them into schedule, status and out-of-office rows.
package bindings

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dennisdiepolder/availability/internal/types"
)

// Kind names one host data binding
type Kind string

const (
	KindSchedule Kind = "schedule"
	KindStatus   Kind = "status"
	KindOOO      Kind = "ooo"
	KindChats    Kind = "chats"
	KindLegacy   Kind = "legacy"
)

// AllKinds lists every binding the widget understands
var AllKinds = []Kind{KindSchedule, KindStatus, KindOOO, KindChats, KindLegacy}

// ParseKind validates a binding name from a request path
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", types.ErrUnknownTable, s)
}

// Table maps a column id to its values, aligned by row index
type Table map[string][]any

// Rows returns the row count, which is the length of the longest column
func (t Table) Rows() int {
	n := 0
	for _, col := range t {
		if len(col) > n {
			n = len(col)
		}
	}
	return n
}

// Has reports whether the column exists
func (t Table) Has(column string) bool {
	_, ok := t[column]
	return ok && column != ""
}

// Cell returns the value at row i of column as trimmed text. Missing columns
// and short columns read as empty.
func (t Table) Cell(column string, i int) string {
	col, ok := t[column]
	if !ok || i < 0 || i >= len(col) {
		return ""
	}
	return strings.TrimSpace(cellText(col[i]))
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case map[string]any:
		// host cells sometimes arrive as {"value": ..., "formatted": ...}
		if f, ok := x["formatted"]; ok {
			return cellText(f)
		}
		return cellText(x["value"])
	default:
		return fmt.Sprint(x)
	}
}

// truthy reads the spreadsheet-style booleans used in the OOO columns
func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1", "x", "ooo", "out", "pto":
		return true
	}
	return false
}

// minutes parses a minutes-in-status cell, tolerating decimals
func minutes(s string) int {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) {
		return 0
	}
	return int(math.Round(f))
}
