// Package report turns an answer tree into a document outline and renders the
// outline as Markdown, HTML or DOCX.
package report

// Block is one piece of section content. The set of implementations is closed:
// KeyValueBlock, BulletList, Table and Paragraph.
type Block interface {
	isBlock()
}

// KeyValue is a single "key: value" line.
type KeyValue struct {
	Key   string
	Value string
}

// KeyValueBlock renders as one "key: value" line per pair.
type KeyValueBlock struct {
	Pairs []KeyValue
}

// BulletList renders as an optionally labeled bulleted list.
type BulletList struct {
	Label string
	Items []string
}

// Table is a two-column table.
type Table struct {
	Header [2]string
	Rows   [][2]string
}

// Paragraph is free text with an optional bold label above it.
type Paragraph struct {
	Label string
	Text  string
}

func (KeyValueBlock) isBlock() {}
func (BulletList) isBlock()    {}
func (Table) isBlock()         {}
func (Paragraph) isBlock()     {}

// Section is a heading followed by blocks and nested subsections.
type Section struct {
	Heading     string
	Blocks      []Block
	Subsections []Section
}

// Document is the full outline of a workplan report.
type Document struct {
	Title    string
	Sections []Section
}
