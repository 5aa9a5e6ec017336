package printer

import (
	"bytes"
	"strings"
)

// ESC/POS command bytes.
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf   bytes.Buffer
	width int // characters per line: 32 for 58mm paper, 48 for 80mm
}

// NewDocument starts a document for the given character width.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = 48
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

// Init sends ESC @ (initialize printer).
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

// Separator prints a full-width rule.
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// Cut sends the partial paper cut command.
func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Encode lays out a job as ESC/POS: the text lines, with lines made only of
// '=' drawn as bold full-width rules, then a feed and a cut.
func Encode(job Job, width int) []byte {
	d := NewDocument(width)
	for _, line := range strings.Split(strings.TrimRight(job.Text, "\n"), "\n") {
		if isRule(line, '=') {
			d.SetBold(true).Separator('=').SetBold(false)
			continue
		}
		d.Text(line)
	}
	return d.FeedLines(3).Cut().Bytes()
}

func isRule(line string, char byte) bool {
	line = strings.TrimSpace(line)
	return len(line) >= 10 && strings.Trim(line, string(char)) == ""
}
