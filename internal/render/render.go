// Package render turns raw board member messages into display markup.
//
// A message is either plain multi-line text or a mixed block in which every
// line holding a '|' is a table row. Consecutive rows form one table; any
// other line closes the open table and is emitted as text followed by a line
// break. Rows are not validated against each other.
package render

import (
	"encoding/json"
	"strings"
)

// Kind is the classification of a raw message.
type Kind int

const (
	PlainText Kind = iota
	MixedTableText
)

func (k Kind) String() string {
	if k == MixedTableText {
		return "mixed"
	}
	return "plain"
}

const cellSeparator = "|"

// Classify reports MixedTableText when raw contains at least one '|'.
func Classify(raw string) Kind {
	if strings.Contains(raw, cellSeparator) {
		return MixedTableText
	}
	return PlainText
}

// Node is one element of a Fragment: Text, LineBreak or Table.
type Node interface {
	nodeType() string
}

type Text string

type LineBreak struct{}

// Row holds trimmed, non-empty cells.
type Row []string

type Table struct {
	Rows []Row
}

func (Text) nodeType() string      { return "text" }
func (LineBreak) nodeType() string { return "br" }
func (Table) nodeType() string     { return "table" }

// Fragment is the rendered form of one message.
type Fragment struct {
	Kind  Kind
	Nodes []Node
}

// Render converts raw into a Fragment. It is pure and deterministic.
func Render(raw string) Fragment {
	if Classify(raw) == PlainText {
		return renderPlain(raw)
	}
	return renderMixed(raw)
}

func renderPlain(raw string) Fragment {
	f := Fragment{Kind: PlainText}
	for i, line := range strings.Split(raw, "\n") {
		if i > 0 {
			f.Nodes = append(f.Nodes, LineBreak{})
		}
		if line != "" {
			f.Nodes = append(f.Nodes, Text(line))
		}
	}
	return f
}

func renderMixed(raw string) Fragment {
	f := Fragment{Kind: MixedTableText}
	var open *Table
	closeTable := func() {
		if open != nil {
			f.Nodes = append(f.Nodes, *open)
			open = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if !strings.Contains(line, cellSeparator) {
			closeTable()
			if line != "" {
				f.Nodes = append(f.Nodes, Text(line))
			}
			f.Nodes = append(f.Nodes, LineBreak{})
			continue
		}
		if open == nil {
			open = &Table{}
		}
		open.Rows = append(open.Rows, splitRow(line))
	}
	// End of input behaves like a non-row line for closing purposes.
	closeTable()
	return f
}

func splitRow(line string) Row {
	row := Row{}
	for _, cell := range strings.Split(line, cellSeparator) {
		if c := strings.TrimSpace(cell); c != "" {
			row = append(row, c)
		}
	}
	return row
}

// Tables returns the tables of f in order.
func (f Fragment) Tables() []Table {
	var out []Table
	for _, n := range f.Nodes {
		if t, ok := n.(Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// HTML serialises f without escaping; the host context is responsible for it.
func (f Fragment) HTML() string {
	var b strings.Builder
	for _, n := range f.Nodes {
		switch n := n.(type) {
		case Text:
			b.WriteString(string(n))
		case LineBreak:
			b.WriteString("<br>")
		case Table:
			b.WriteString("<table>")
			for _, row := range n.Rows {
				b.WriteString("<tr>")
				for _, cell := range row {
					b.WriteString("<td>")
					b.WriteString(cell)
					b.WriteString("</td>")
				}
				b.WriteString("</tr>")
			}
			b.WriteString("</table>")
		}
	}
	return b.String()
}

// Lines flattens f into text lines for non-HTML hosts. Each table is passed
// to table so the caller decides how rows are laid out.
func (f Fragment) Lines(table func(Table) string) []string {
	var (
		lines []string
		cur   strings.Builder
	)
	for _, n := range f.Nodes {
		switch n := n.(type) {
		case Text:
			cur.WriteString(string(n))
		case LineBreak:
			lines = append(lines, cur.String())
			cur.Reset()
		case Table:
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			lines = append(lines, strings.Split(table(n), "\n")...)
		}
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

type wireNode struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Rows []Row  `json:"rows,omitempty"`
}

// MarshalJSON encodes f as a list of typed nodes so a browser can build the
// DOM from text nodes.
func (f Fragment) MarshalJSON() ([]byte, error) {
	nodes := make([]wireNode, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		w := wireNode{Type: n.nodeType()}
		switch n := n.(type) {
		case Text:
			w.Text = string(n)
		case Table:
			w.Rows = n.Rows
		}
		nodes = append(nodes, w)
	}
	return json.Marshal(struct {
		Kind  string     `json:"kind"`
		Nodes []wireNode `json:"nodes"`
	}{Kind: f.Kind.String(), Nodes: nodes})
}
