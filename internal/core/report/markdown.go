package report

import (
	"bytes"
	"fmt"
	"strings"
)

// Markdown renders doc as CommonMark with GFM tables.
func Markdown(doc Document) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", doc.Title)
	for _, s := range doc.Sections {
		writeSection(&buf, s, 2)
	}
	return buf.Bytes()
}

func writeSection(buf *bytes.Buffer, s Section, level int) {
	fmt.Fprintf(buf, "\n%s %s\n", strings.Repeat("#", min(level, 6)), inline(s.Heading))
	for _, b := range s.Blocks {
		buf.WriteByte('\n')
		writeBlock(buf, b)
	}
	for _, sub := range s.Subsections {
		writeSection(buf, sub, level+1)
	}
}

func writeBlock(buf *bytes.Buffer, b Block) {
	switch b := b.(type) {
	case KeyValueBlock:
		for i, kv := range b.Pairs {
			if i > 0 {
				// hard line break
				buf.WriteString("  \n")
			}
			fmt.Fprintf(buf, "%s: %s", kv.Key, inline(kv.Value))
		}
		buf.WriteByte('\n')
	case BulletList:
		if b.Label != "" {
			fmt.Fprintf(buf, "**%s**\n\n", b.Label)
		}
		if len(b.Items) == 0 {
			fmt.Fprintf(buf, "- %s\n", EmptyPlaceholder)
			return
		}
		for _, it := range b.Items {
			fmt.Fprintf(buf, "- %s\n", inline(it))
		}
	case Table:
		fmt.Fprintf(buf, "| %s | %s |\n| --- | --- |\n", cell(b.Header[0]), cell(b.Header[1]))
		for _, row := range b.Rows {
			fmt.Fprintf(buf, "| %s | %s |\n", cell(row[0]), cell(row[1]))
		}
	case Paragraph:
		if b.Label == "" {
			fmt.Fprintf(buf, "%s\n", b.Text)
			return
		}
		fmt.Fprintf(buf, "**%s**\n\n", b.Label)
		for _, line := range strings.Split(b.Text, "\n") {
			fmt.Fprintf(buf, "> %s\n", line)
		}
	default:
		panic(fmt.Sprintf("report: unhandled block %T", b))
	}
}

// inline flattens newlines so a value stays on its line.
func inline(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}

func cell(s string) string {
	s = inline(s)
	if s == "" {
		return EmptyPlaceholder
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
