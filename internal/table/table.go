// Package table sorts the rendered credit-risk table by one column at a
// time, extracting typed values from the formatted cells.
package table

import (
	"sort"
	"strconv"
	"strings"
)

type Column string

const (
	ColCompany      Column = "company"
	ColIndustry     Column = "industry"
	ColRating       Column = "rating"
	ColPD           Column = "pd"
	ColLGD          Column = "lgd"
	ColExpectedLoss Column = "expected_loss"
	ColCurrentRatio Column = "current_ratio"
	ColFCR          Column = "fcr"
	ColRisk         Column = "risk"
)

type kind int

const (
	kindText kind = iota
	kindNumber
	kindRating
	kindRisk
)

// ColumnDef maps a column to its cell index and header label.
type ColumnDef struct {
	Column Column
	Index  int
	Header string
	kind   kind
}

// Columns lists the sortable columns in display order.
var Columns = []ColumnDef{
	{ColCompany, 0, "Company", kindText},
	{ColIndustry, 1, "Industry", kindText},
	{ColRating, 2, "Credit Rating", kindRating},
	{ColPD, 3, "PD", kindNumber},
	{ColLGD, 4, "LGD", kindNumber},
	{ColExpectedLoss, 5, "Expected Loss", kindNumber},
	{ColCurrentRatio, 6, "Current Ratio", kindNumber},
	{ColFCR, 7, "FCR", kindNumber},
	{ColRisk, 8, "Risk Level", kindRisk},
}

// Lookup finds the definition of c.
func Lookup(c Column) (ColumnDef, bool) {
	for _, d := range Columns {
		if d.Column == c {
			return d, true
		}
	}
	return ColumnDef{}, false
}

// RatingOrder ranks credit ratings from best to worst.
var RatingOrder = []string{
	"AAA", "AA+", "AA", "AA-", "A+", "A", "A-",
	"BBB+", "BBB", "BBB-", "BB+", "BB", "BB-",
	"B+", "B", "B-", "CCC+", "CCC", "CCC-", "CC", "C", "D",
}

var ratingRank = func() map[string]float64 {
	m := make(map[string]float64, len(RatingOrder))
	for i, r := range RatingOrder {
		m[r] = float64(i + 1)
	}
	return m
}()

var riskRank = map[string]float64{"low": 1, "medium": 2, "high": 3}

// unranked sorts unknown ratings and risk labels after every known one.
const unranked = 1e9

// Value is an extracted sort key.
type Value struct {
	Num  float64
	Text string
}

var numberCleaner = strings.NewReplacer("%", "", "$", "", ",", "", "x", "", "X", "")

// Extract turns a formatted cell of column c into its sort key. Numbers
// lose % $ , and x; unparsable numbers count as 0.
func Extract(c Column, cell string) Value {
	cell = strings.TrimSpace(cell)
	def, ok := Lookup(c)
	if !ok {
		return Value{Text: strings.ToLower(cell)}
	}
	switch def.kind {
	case kindNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(numberCleaner.Replace(cell)), 64)
		if err != nil {
			n = 0
		}
		return Value{Num: n}
	case kindRating:
		if r, ok := ratingRank[strings.ToUpper(cell)]; ok {
			return Value{Num: r}
		}
		return Value{Num: unranked, Text: cell}
	case kindRisk:
		if r, ok := riskRank[strings.ToLower(cell)]; ok {
			return Value{Num: r}
		}
		return Value{Num: unranked, Text: cell}
	default:
		return Value{Text: strings.ToLower(cell)}
	}
}

func compare(a, b Value) int {
	switch {
	case a.Num < b.Num:
		return -1
	case a.Num > b.Num:
		return 1
	}
	return strings.Compare(a.Text, b.Text)
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the single active sort.
type SortState struct {
	Column    Column    `json:"column"`
	Direction Direction `json:"direction"`
}

// DefaultSort is probability of default, highest first.
var DefaultSort = SortState{Column: ColPD, Direction: Desc}

// ParseSort reads a sort from query values, falling back to DefaultSort for
// unknown columns.
func ParseSort(column, direction string) SortState {
	if _, ok := Lookup(Column(column)); !ok {
		return DefaultSort
	}
	d := Asc
	if Direction(strings.ToLower(direction)) == Desc {
		d = Desc
	}
	return SortState{Column: Column(column), Direction: d}
}

// Click returns the state after clicking the header of c: the active
// column flips direction, any other column starts ascending.
func (s SortState) Click(c Column) SortState {
	if s.Column == c {
		if s.Direction == Asc {
			return SortState{Column: c, Direction: Desc}
		}
		return SortState{Column: c, Direction: Asc}
	}
	return SortState{Column: c, Direction: Asc}
}

// Row is one table body row.
type Row struct {
	ID    string
	Cells []string
}

func (r Row) cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Sort reorders rows in place by s. Ties keep their relative order.
func Sort(rows []Row, s SortState) {
	def, ok := Lookup(s.Column)
	if !ok {
		return
	}
	vals := make([]Value, len(rows))
	for i := range rows {
		vals[i] = Extract(s.Column, rows[i].cell(def.Index))
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		c := compare(vals[idx[i]], vals[idx[j]])
		if s.Direction == Desc {
			return c > 0
		}
		return c < 0
	})

	sorted := make([]Row, len(rows))
	for i, k := range idx {
		sorted[i] = rows[k]
	}
	copy(rows, sorted)
}

// Indicator marks a header.
type Indicator string

const (
	IndicatorNone Indicator = ""
	IndicatorAsc  Indicator = "asc"
	IndicatorDesc Indicator = "desc"
)

// Indicators returns the header indicator of every column; only the active
// column is marked.
func Indicators(s SortState) map[Column]Indicator {
	out := make(map[Column]Indicator, len(Columns))
	for _, d := range Columns {
		out[d.Column] = IndicatorNone
	}
	if _, ok := out[s.Column]; ok {
		if s.Direction == Desc {
			out[s.Column] = IndicatorDesc
		} else {
			out[s.Column] = IndicatorAsc
		}
	}
	return out
}
