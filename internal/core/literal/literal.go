// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package literal decodes the list attributes (genres, directors, actors) that
// the catalog export stores as serialized sequence literals, for example
// "['Drama', 'Sci-Fi']". The parser only understands a flat list of quoted
// strings and numbers; anything else is rejected, so no stored text is ever
// evaluated.
//
// Functions:
//   - ParseList: strict parser returning an error for malformed input.
//   - DecodeList: lossy wrapper that maps absent or malformed input to an
//     empty slice. Display and filter code use this one.
//   - IsAbsent: reports whether a raw cell is one of the missing-value markers
//     written by the export tooling.
package literal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrAbsent is returned by ParseList when the cell holds a missing-value marker.
	ErrAbsent = errors.New("literal: absent value")
	// ErrSyntax is the base error for every rejected literal.
	ErrSyntax = errors.New("literal: invalid list literal")
)

// absentMarkers are the textual forms a missing cell takes once written out by
// pandas or by a JSON/SQL export.
var absentMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"NaN":  {},
	"None": {},
	"null": {},
	"NULL": {},
}

// IsAbsent reports whether raw is empty or a missing-value marker.
func IsAbsent(raw string) bool {
	_, ok := absentMarkers[strings.TrimSpace(raw)]
	return ok
}

// DecodeList returns the elements of a serialized list, or an empty slice when
// the input is absent or cannot be parsed. It never fails.
func DecodeList(raw string) []string {
	out, err := ParseList(raw)
	if err != nil {
		return []string{}
	}
	return out
}

// ParseList parses a flat list literal of quoted strings and numbers.
//
// Inputs:
//   - raw: the cell text, e.g. `['Drama', "Sci-Fi"]` or `[1, 2.5]`.
//
// Outputs:
//   - []string: the elements in order; numbers are kept in their textual form.
//   - error: ErrAbsent for missing markers, an error wrapping ErrSyntax otherwise.
func ParseList(raw string) ([]string, error) {
	if IsAbsent(raw) {
		return nil, ErrAbsent
	}
	p := &parser{src: strings.TrimSpace(raw)}
	return p.list()
}

type parser struct {
	src string
	pos int
}

func (p *parser) fail(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) list() ([]string, error) {
	if p.eof() || p.peek() != '[' {
		return nil, p.fail("expected '['")
	}
	p.pos++
	out := make([]string, 0, 4)

	p.skipSpace()
	if !p.eof() && p.peek() == ']' {
		p.pos++
		return out, p.end()
	}

	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.fail("unterminated list")
		}
		elem, err := p.element()
		if err != nil {
			return nil, err
		}
		out = append(out, elem)

		p.skipSpace()
		if p.eof() {
			return nil, p.fail("unterminated list")
		}
		switch p.peek() {
		case ']':
			p.pos++
			return out, p.end()
		case ',':
			p.pos++
			p.skipSpace()
			// A single trailing comma is legal: ['a', 'b',]
			if !p.eof() && p.peek() == ']' {
				p.pos++
				return out, p.end()
			}
		default:
			return nil, p.fail("unexpected %q after element", p.peek())
		}
	}
}

// end verifies that only whitespace follows the closing bracket.
func (p *parser) end() error {
	p.skipSpace()
	if !p.eof() {
		return p.fail("trailing data after list")
	}
	return nil
}

func (p *parser) element() (string, error) {
	switch c := p.peek(); {
	case c == '\'' || c == '"':
		return p.quoted(c)
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return "", p.fail("unsupported element starting with %q", c)
	}
}

func (p *parser) quoted(quote byte) (string, error) {
	p.pos++
	var sb strings.Builder
	for {
		if p.eof() {
			return "", p.fail("unterminated string")
		}
		c := p.peek()
		switch {
		case c == quote:
			p.pos++
			return sb.String(), nil
		case c == '\n':
			return "", p.fail("newline in string")
		case c == '\\':
			p.pos++
			if p.eof() {
				return "", p.fail("unterminated escape")
			}
			if err := p.escape(&sb); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			sb.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *parser) escape(sb *strings.Builder) error {
	c := p.peek()
	p.pos++
	switch c {
	case '\\', '\'', '"':
		sb.WriteByte(c)
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'u':
		if p.pos+4 > len(p.src) {
			return p.fail("short \\u escape")
		}
		v, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
		if err != nil {
			return p.fail("bad \\u escape")
		}
		sb.WriteRune(rune(v))
		p.pos += 4
	default:
		// Unknown escapes keep the backslash, like the exporting runtime does.
		sb.WriteByte('\\')
		sb.WriteByte(c)
	}
	return nil
}

func (p *parser) number() (string, error) {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' || c == '_' {
			p.pos++
			continue
		}
		break
	}
	text := p.src[start:p.pos]
	if _, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64); err != nil {
		return "", p.fail("invalid number %q", text)
	}
	return text, nil
}
