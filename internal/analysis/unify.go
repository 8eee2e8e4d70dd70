package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/cnodash/internal/dataset"
)

// Source column names.
const (
	ColCNO         = "CNO"
	ColStatus      = "Situação"
	ColDestination = "Destinação"
	ColState       = "Estado"
	ColArea        = "Área total"
)

// ActiveStatus is the only Situação value that takes part in the dashboard.
const ActiveStatus = 2

// InvalidStates are Estado values blanked out before aggregation. Matching is exact.
var InvalidStates = []string{"estado", "PERNAMBUCO", "EX", "BUENO ARIES", "CHUBUT", "SÃO PAULO", "CHILE"}

// Record is one unified registry row. Nil fields are missing values.
type Record struct {
	CNO         string
	Status      int
	Destination *string
	State       *string
	Area        *float64
}

// Dataset is the unified, filtered record set.
type Dataset struct {
	Sources []string
	Records []Record
}

// MissingColumnError reports a required column absent from the source tables.
type MissingColumnError struct {
	Column string
	Tables []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in %s", e.Column, strings.Join(e.Tables, ", "))
}

// colRef locates a field in one side of the join.
type colRef struct {
	side int // 0 = a, 1 = b
	idx  int
}

// Unify full-outer-joins a and b on CNO, keeps rows whose Situação equals
// ActiveStatus and blanks out InvalidStates.
func Unify(a, b *dataset.Table) (*Dataset, error) {
	tables := []*dataset.Table{a, b}
	names := []string{a.Name, b.Name}

	keys := [2]int{}
	for side, t := range tables {
		idx, ok := t.Column(ColCNO)
		if !ok {
			return nil, &MissingColumnError{Column: ColCNO, Tables: []string{t.Name}}
		}
		keys[side] = idx
	}
	refs := map[string]colRef{}
	for _, col := range []string{ColStatus, ColDestination, ColState, ColArea} {
		ref, ok := locate(tables, col)
		if !ok {
			return nil, &MissingColumnError{Column: col, Tables: names}
		}
		refs[col] = ref
	}

	left := groupByKey(a, keys[0])
	right := groupByKey(b, keys[1])
	joinKeys := make([]string, 0, len(left)+len(right))
	for k := range left {
		joinKeys = append(joinKeys, k)
	}
	for k := range right {
		if _, ok := left[k]; !ok {
			joinKeys = append(joinKeys, k)
		}
	}
	sort.Strings(joinKeys)

	ds := &Dataset{Sources: names}
	for _, k := range joinKeys {
		ls, rs := left[k], right[k]
		// A key missing on one side still yields rows, with that side null.
		if len(ls) == 0 {
			ls = [][]string{nil}
		}
		if len(rs) == 0 {
			rs = [][]string{nil}
		}
		for _, lrow := range ls {
			for _, rrow := range rs {
				rows := [2][]string{lrow, rrow}
				get := func(col string) string {
					ref := refs[col]
					return tables[ref.side].Cell(rows[ref.side], ref.idx)
				}
				if !isActive(get(ColStatus)) {
					continue
				}
				ds.Records = append(ds.Records, Record{
					CNO:         k,
					Status:      ActiveStatus,
					Destination: text(get(ColDestination)),
					State:       state(get(ColState)),
					Area:        number(get(ColArea)),
				})
			}
		}
	}
	return ds, nil
}

func locate(tables []*dataset.Table, col string) (colRef, bool) {
	for side, t := range tables {
		if idx, ok := t.Column(col); ok {
			return colRef{side: side, idx: idx}, true
		}
	}
	return colRef{}, false
}

func groupByKey(t *dataset.Table, col int) map[string][][]string {
	out := make(map[string][][]string, len(t.Rows))
	for _, row := range t.Rows {
		k := strings.TrimSpace(t.Cell(row, col))
		out[k] = append(out[k], row)
	}
	return out
}

func isActive(s string) bool {
	v, ok := dataset.ParseNumber(s)
	return ok && v == ActiveStatus
}

// text keeps the cell verbatim; only blank cells become missing.
func text(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func state(s string) *string {
	v := text(s)
	if v == nil {
		return nil
	}
	for _, bad := range InvalidStates {
		if *v == bad {
			return nil
		}
	}
	return v
}

func number(s string) *float64 {
	v, ok := dataset.ParseNumber(s)
	if !ok {
		return nil
	}
	return &v
}
