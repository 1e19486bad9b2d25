// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"strings"
)

// chunk is a run of database text under one heading.
type chunk struct {
	seq     int
	heading string
	body    string
}

// text renders the chunk as it is placed in a prompt.
func (c chunk) text() string {
	if c.heading == "" {
		return c.body
	}
	return c.heading + "\n" + c.body
}

// splitChunks splits text at Markdown headings (#, ## or ###) and then
// packs the paragraphs under each heading into chunks of about size
// characters. A paragraph longer than size becomes its own chunk.
func splitChunks(text string, size int) []chunk {
	var chunks []chunk
	heading := ""
	var paras []string
	var cur strings.Builder

	emit := func() {
		body := strings.TrimSpace(cur.String())
		if body != "" || (heading != "" && len(paras) == 0) {
			chunks = append(chunks, chunk{seq: len(chunks), heading: heading, body: body})
		}
		cur.Reset()
	}
	flushSection := func() {
		for _, p := range paras {
			if cur.Len() > 0 && cur.Len()+len(p)+2 > size {
				emit()
			}
			if cur.Len() > 0 {
				cur.WriteString("\n\n")
			}
			cur.WriteString(p)
		}
		emit()
		paras = nil
	}

	var para []string
	endPara := func() {
		if p := strings.TrimSpace(strings.Join(para, "\n")); p != "" {
			paras = append(paras, p)
		}
		para = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if isHeading(trimmed) {
			endPara()
			flushSection()
			heading = trimmed
			continue
		}
		if trimmed == "" {
			endPara()
			continue
		}
		para = append(para, line)
	}
	endPara()
	flushSection()
	return chunks
}

// isHeading reports whether the line is a #, ## or ### heading.
func isHeading(line string) bool {
	return strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "### ")
}

// matchQuery turns free text into an FTS OR-query of quoted terms. Terms
// shorter than three characters are dropped.
func matchQuery(query string) string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r > 127)
	})
	seen := make(map[string]bool, len(fields))
	var terms []string
	for _, f := range fields {
		if len([]rune(f)) < 3 || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, `"`+f+`"`)
	}
	return strings.Join(terms, " OR ")
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
