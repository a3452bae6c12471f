package output

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/matshell/pkg/matrix"
)

// GridStyle selects how a matrix body is drawn.
type GridStyle string

// Grid styles.
const (
	GridPlain GridStyle = "plain"
	GridTable GridStyle = "table"
)

// ParseGridStyle validates a configured grid style.
func ParseGridStyle(s string) (GridStyle, error) {
	switch GridStyle(strings.ToLower(s)) {
	case "", GridPlain:
		return GridPlain, nil
	case GridTable:
		return GridTable, nil
	}
	return "", fmt.Errorf("unknown display style %q (want plain or table)", s)
}

// Matrix renders m headed by its name and dimensions. JSON mode writes
// its MatrixDoc instead and ignores style.
func (r *Renderer) Matrix(m *matrix.Matrix, style GridStyle) {
	if r.EffectiveMode() == ModeJSON {
		_ = r.JSON(NewMatrixDoc(m))
		return
	}
	if style == GridTable {
		r.matrixTable(m)
		return
	}
	r.matrixPlain(m)
}

func (r *Renderer) matrixPlain(m *matrix.Matrix) {
	var b strings.Builder
	fmt.Fprintf(&b, "\nMatrix Contents (%s):\n", m.Name)
	fmt.Fprintf(&b, "DIM = (%d,%d)\n", m.Rows, m.Cols)
	for i := uint32(0); i < m.Rows; i++ {
		for _, v := range m.Row(i) {
			b.WriteString(strconv.FormatUint(uint64(v), 10))
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, _ = fmt.Fprint(r.w, b.String())
}

func (r *Renderer) matrixTable(m *matrix.Matrix) {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s (%dx%d)", m.Name, m.Rows, m.Cols))

	header := make(table.Row, int(m.Cols)+1)
	header[0] = ""
	for c := uint32(0); c < m.Cols; c++ {
		header[c+1] = c
	}
	t.AppendHeader(header)

	for i := uint32(0); i < m.Rows; i++ {
		row := make(table.Row, int(m.Cols)+1)
		row[0] = i
		for c, v := range m.Row(i) {
			row[c+1] = v
		}
		t.AppendRow(row)
	}
	t.Render()
}

// Table renders rows under a header using the light table style. JSON mode
// writes an array with one object per row, keyed by header.
func (r *Renderer) Table(header []string, rows [][]string) {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		r.markdownTable(header, rows)
		return
	case ModeJSON:
		r.jsonTable(header, rows)
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)

	h := make(table.Row, len(header))
	for i, col := range header {
		h[i] = col
	}
	t.AppendHeader(h)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = v
		}
		t.AppendRow(tr)
	}
	t.Render()
}

func (r *Renderer) markdownTable(header []string, rows [][]string) {
	_, _ = fmt.Fprintf(r.w, "| %s |\n", strings.Join(header, " | "))
	seps := make([]string, len(header))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(r.w, "| %s |\n", strings.Join(seps, " | "))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		_, _ = fmt.Fprintf(r.w, "| %s |\n", strings.Join(cells, " | "))
	}
}

func (r *Renderer) jsonTable(header []string, rows [][]string) {
	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	_ = r.JSON(records)
}

// MatrixDoc is the structured form of a matrix used by JSON and YAML output.
type MatrixDoc struct {
	Name string     `json:"name" yaml:"name"`
	Rows uint32     `json:"rows" yaml:"rows"`
	Cols uint32     `json:"cols" yaml:"cols"`
	Data [][]uint32 `json:"data" yaml:"data"`
}

// NewMatrixDoc converts m to its structured form.
func NewMatrixDoc(m *matrix.Matrix) MatrixDoc {
	doc := MatrixDoc{Name: m.Name, Rows: m.Rows, Cols: m.Cols, Data: make([][]uint32, m.Rows)}
	for i := uint32(0); i < m.Rows; i++ {
		doc.Data[i] = append([]uint32(nil), m.Row(i)...)
	}
	return doc
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
