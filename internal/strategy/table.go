package strategy

import (
	"strconv"

	"github.com/lox/bjtrainer/internal/deck"
)

// Category is the hand shape used to pick a chart section.
type Category int

const (
	Hard Category = iota
	Soft
	Pair
)

func (c Category) String() string {
	switch c {
	case Hard:
		return "hard"
	case Soft:
		return "soft"
	case Pair:
		return "pair"
	default:
		return "unknown"
	}
}

// cell is one chart entry. Conditional doubles carry their fallback.
type cell uint8

const (
	h  cell = iota // hit
	s              // stand
	d              // double, otherwise hit
	ds             // double, otherwise stand
	p              // split
)

func (c cell) code() string {
	switch c {
	case h:
		return "H"
	case s:
		return "S"
	case d:
		return "D"
	case ds:
		return "Ds"
	case p:
		return "P"
	default:
		return "?"
	}
}

// row is indexed by dealer upcard: 2, 3, 4, 5, 6, 7, 8, 9, 10, A.
type row [10]cell

// Upcards labels the chart columns.
var Upcards = [10]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "A"}

const (
	minHard = 5
	maxHard = 17
)

// hardRows covers hard 5 through 17; below 5 always hits and 17 and up stands.
var hardRows = map[int]row{
	5:  {h, h, h, h, h, h, h, h, h, h},
	6:  {h, h, h, h, h, h, h, h, h, h},
	7:  {h, h, h, h, h, h, h, h, h, h},
	8:  {h, h, h, h, h, h, h, h, h, h},
	9:  {h, d, d, d, d, h, h, h, h, h},
	10: {d, d, d, d, d, d, d, d, h, h},
	11: {d, d, d, d, d, d, d, d, d, h},
	12: {h, h, s, s, s, h, h, h, h, h},
	13: {s, s, s, s, s, h, h, h, h, h},
	14: {s, s, s, s, s, h, h, h, h, h},
	15: {s, s, s, s, s, h, h, h, h, h},
	16: {s, s, s, s, s, h, h, h, h, h},
	17: {s, s, s, s, s, s, s, s, s, s},
}

// softRows covers every soft total. Soft 12 is an unsplit pair of aces.
var softRows = map[int]row{
	12: {h, h, h, h, h, h, h, h, h, h},
	13: {h, h, h, d, d, h, h, h, h, h},
	14: {h, h, h, d, d, h, h, h, h, h},
	15: {h, h, d, d, d, h, h, h, h, h},
	16: {h, h, d, d, d, h, h, h, h, h},
	17: {h, d, d, d, d, h, h, h, h, h},
	18: {s, ds, ds, ds, ds, s, s, h, h, h},
	19: {s, s, s, s, s, s, s, s, s, s},
	20: {s, s, s, s, s, s, s, s, s, s},
	21: {s, s, s, s, s, s, s, s, s, s},
}

// pairRows is keyed by the card points of the pair, aces as 11.
var pairRows = map[int]row{
	2:  {p, p, p, p, p, p, h, h, h, h},
	3:  {p, p, p, p, p, p, h, h, h, h},
	4:  {h, h, h, p, p, h, h, h, h, h},
	5:  {d, d, d, d, d, d, d, d, h, h},
	6:  {p, p, p, p, p, h, h, h, h, h},
	7:  {p, p, p, p, p, p, h, h, h, h},
	8:  {p, p, p, p, p, p, p, p, p, p},
	9:  {p, p, p, p, p, s, p, p, s, s},
	10: {s, s, s, s, s, s, s, s, s, s},
	11: {p, p, p, p, p, p, p, p, p, p},
}

// column maps a dealer upcard to its chart column.
func column(upcard deck.Card) int {
	if upcard.IsAce() {
		return 9
	}
	return upcard.Points() - 2
}

// lookup returns the chart cell for a category, value and upcard.
func lookup(cat Category, value int, upcard deck.Card) (cell, bool) {
	var rows map[int]row
	switch cat {
	case Pair:
		rows = pairRows
	case Soft:
		rows = softRows
	default:
		switch {
		case value < minHard:
			return h, true
		case value >= maxHard:
			return s, true
		}
		rows = hardRows
	}
	r, ok := rows[value]
	if !ok {
		return 0, false
	}
	return r[column(upcard)], true
}

// ChartRow is one printable line of the chart.
type ChartRow struct {
	Category Category
	Label    string
	Codes    [10]string
}

// Chart returns the full chart in display order: hard, soft, pairs.
func Chart() []ChartRow {
	var rows []ChartRow
	for v := minHard; v <= maxHard; v++ {
		label := strconv.Itoa(v)
		if v == maxHard {
			label += "+"
		}
		rows = append(rows, chartRow(Hard, label, hardRows[v]))
	}
	for v := 12; v <= 21; v++ {
		rows = append(rows, chartRow(Soft, "A,"+softKicker(v), softRows[v]))
	}
	for v := 2; v <= 11; v++ {
		label := strconv.Itoa(v)
		if v == 10 {
			label = "T"
		}
		if v == 11 {
			label = "A"
		}
		rows = append(rows, chartRow(Pair, label+","+label, pairRows[v]))
	}
	return rows
}

func chartRow(cat Category, label string, r row) ChartRow {
	cr := ChartRow{Category: cat, Label: label}
	for i, c := range r {
		cr.Codes[i] = c.code()
	}
	return cr
}

func softKicker(total int) string {
	if total == 12 {
		return "A"
	}
	if total == 21 {
		return "T"
	}
	return strconv.Itoa(total - 11)
}
