package parser

import "strings"

// TextParser decodes UTF-8, dropping invalid bytes instead of failing.
type TextParser struct{}

func NewTextParser() *TextParser {
	return &TextParser{}
}

func (p *TextParser) Parse(data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), ""), nil
}

func (p *TextParser) Format() Format { return FormatText }

func (p *TextParser) Extensions() []string { return []string{".txt"} }
