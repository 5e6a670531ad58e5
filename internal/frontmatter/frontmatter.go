// Package frontmatter separates the leading YAML metadata block of a Markdown
// document from its body.
package frontmatter

import (
	"bytes"
	"errors"
)

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// The block must start on the first line. It ends at the first line that
// reads `---` or `...`. If the document does not start with a YAML
// frontmatter delimiter, had is false and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	offset := 0
	for {
		end := bytes.Index(rest[offset:], []byte(nl))
		line, next := rest[offset:], len(rest)
		if end >= 0 {
			line, next = rest[offset:offset+end], offset+end+len(nl)
		}
		if isClosingDelimiter(line) {
			return rest[:offset], rest[next:], true, nil
		}
		if end < 0 {
			return nil, nil, false, ErrMissingClosingDelimiter
		}
		offset = next
	}
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

func isClosingDelimiter(line []byte) bool {
	line = bytes.TrimRight(line, " \t")
	return bytes.Equal(line, []byte("---")) || bytes.Equal(line, []byte("..."))
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
