// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

import (
	"io"
)

// ErrLogFunc is the parser's error-recovery callback. It is invoked
// with the error kind and the 1-based line it was detected on; a true
// return aborts the parse with ErrParseAborted.
type ErrLogFunc func(err Err, line int) (abort bool)

// SectionAcceptFunc decides whether a just-parsed section header is
// added to the data. Sections it rejects are still consumed
// syntactically (header and entries) but never added.
type SectionAcceptFunc func(name string, kind SectionKind) bool

// ParseOptions configures one call to Parse.
type ParseOptions struct {
	// NSections caps the number of section headers that may be
	// attempted (not necessarily accepted); 0 means unlimited.
	NSections int

	// SectionAccept, if set, filters which sections are kept.
	SectionAccept SectionAcceptFunc

	// ErrLog receives every recoverable parse error.
	ErrLog ErrLogFunc
}

// ParseAll is the zero-value ParseOptions: no section cap, no
// filtering, no error logging.
var ParseAll = ParseOptions{}

type parser struct {
	r    io.ByteReader
	cur  int
	next int
	line int

	d      *Data
	opts   ParseOptions
	cursec *Section

	sectionsAttempted int
}

func (p *parser) readByte() int {
	b, err := p.r.ReadByte()
	if err != nil {
		return -1
	}
	return int(b)
}

func (p *parser) advance() {
	if p.cur == '\n' {
		p.line++
	}
	p.cur = p.next
	p.next = p.readByte()
}

func (p *parser) logErr(err Err) error {
	if p.opts.ErrLog == nil {
		return nil
	}
	if p.opts.ErrLog(err, p.line) {
		return ErrParseAborted
	}
	return nil
}

func isLineWhitespace(b int) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

func (p *parser) skipLineWhitespace() {
	for isLineWhitespace(p.cur) {
		p.advance()
	}
}

func (p *parser) skipToEOL() {
	for p.cur >= 0 && p.cur != '\n' {
		p.advance()
	}
}

// Parse reads an LSML document from r into d, per opts.
func Parse(d *Data, r io.ByteReader, opts ParseOptions) error {
	p := &parser{r: r, line: 1, d: d, opts: opts}
	p.cur = p.readByte()
	p.next = p.readByte()

	for p.cur >= 0 {
		p.skipLineWhitespace()
		switch {
		case p.cur < 0:
			// Trailing whitespace ran to EOF.
		case (p.cur == '{' && p.next != '}') || (p.cur == '[' && p.next != ']'):
			if opts.NSections > 0 && p.sectionsAttempted >= opts.NSections {
				return nil
			}
			p.sectionsAttempted++
			if err := p.parseSectionHeader(); err != nil {
				return err
			}
		case p.cur == '#':
			p.skipToEOL()
		case p.cur == '\n':
			// Blank line.
		default:
			if err := p.parseEntry(); err != nil {
				return err
			}
		}
		// Every handler above must leave cur on the line's trailing
		// newline or at EOF; skipToEOL is a no-op when it already has.
		p.skipToEOL()
		if p.cur == '\n' {
			p.advance()
		}
	}
	return nil
}

func (p *parser) parseSectionHeader() error {
	open := p.cur
	closeDelim := byte('}')
	kind := SectionTable
	if open == '[' {
		closeDelim = ']'
		kind = SectionArray
	}
	p.advance() // past '{' or '['

	ts, err := p.parseString(closeDelim)
	if err != nil {
		return err
	}
	if ts.len() == 0 {
		ts.discard()
		if abortErr := p.logErr(ErrSectionNameEmpty); abortErr != nil {
			return abortErr
		}
		p.cursec = nil
		return nil
	}

	if p.cur == int(closeDelim) {
		p.advance()
	} else {
		if abortErr := p.logErr(ErrSectionHeaderUnclosed); abortErr != nil {
			return abortErr
		}
	}

	// Text after the close but before the newline.
	loggedTrailing := false
	for p.cur >= 0 && p.cur != '\n' {
		if isLineWhitespace(p.cur) {
			p.advance()
			continue
		}
		if p.cur == '#' {
			p.skipToEOL()
			break
		}
		if !loggedTrailing {
			if abortErr := p.logErr(ErrTextAfterSectionHeader); abortErr != nil {
				return abortErr
			}
			loggedTrailing = true
		}
		p.advance()
	}

	name := string(ts.bytes())
	if p.opts.SectionAccept != nil && !p.opts.SectionAccept(name, kind) {
		ts.discard()
		p.cursec = nil
		return nil
	}

	rs, err := ts.commit(p.d)
	if err != nil {
		return err
	}
	sec, err := p.d.addSectionRS(kind, rs)
	if err != nil {
		if err == ErrSectionNameReused {
			p.cursec = nil
			if abortErr := p.logErr(ErrSectionNameReused); abortErr != nil {
				return abortErr
			}
			return nil
		}
		return err
	}
	p.cursec = sec
	return nil
}

func (p *parser) parseEntry() error {
	if p.cursec == nil {
		// A stray entry with no current section is only an error if no
		// section header has been attempted in this parse and no
		// section exists anywhere in the data yet; otherwise the
		// current section was merely skipped (a name error, which
		// already logged its own error, or a rejecting SectionAccept)
		// and the entry is dropped silently.
		if p.sectionsAttempted == 0 && p.d.SectionCount() == 0 {
			if abortErr := p.logErr(ErrTextOutsideSection); abortErr != nil {
				return abortErr
			}
		}
		p.skipToEOL()
		return nil
	}
	if p.cursec.kind == SectionTable {
		return p.parseTableEntry()
	}
	return p.parseArrayEntries()
}

func (p *parser) parseTableEntry() error {
	keyTS, err := p.parseString('=')
	if err != nil {
		return err
	}
	if keyTS.len() == 0 {
		keyTS.discard()
		if abortErr := p.logErr(ErrInvalidKey); abortErr != nil {
			return abortErr
		}
		p.skipToEOL()
		return nil
	}
	if p.cur != '=' {
		keyTS.discard()
		if abortErr := p.logErr(ErrTableEntryMissingEquals); abortErr != nil {
			return abortErr
		}
		p.skipToEOL()
		return nil
	}
	p.advance() // consume '='

	keyRS, err := keyTS.commit(p.d)
	if err != nil {
		return err
	}
	if _, exists := p.cursec.GetTableEntry(keyRS.String()); exists {
		if abortErr := p.logErr(ErrTableKeyReused); abortErr != nil {
			return abortErr
		}
		p.skipToEOL()
		return nil
	}

	valTS, err := p.parseString('\n')
	if err != nil {
		return err
	}
	valRS, err := valTS.commit(p.d)
	if err != nil {
		return err
	}
	return p.d.addTableEntryRS(p.cursec, keyRS, valRS)
}

func (p *parser) parseArrayEntries() error {
	first := true
	for p.cur >= 0 && p.cur != '\n' && p.cur != '#' {
		valTS, err := p.parseString(',')
		if err != nil {
			return err
		}
		valRS, err := valTS.commit(p.d)
		if err != nil {
			return err
		}
		if err := p.d.arrayAppendRS(p.cursec, valRS, first); err != nil {
			return err
		}
		first = false
		if p.cur == ',' {
			p.advance()
			p.skipLineWhitespace()
			continue
		}
		break
	}
	if p.cur == '#' {
		p.skipToEOL()
	}
	return nil
}

// parseString reads one string in the LSML string sub-language
// (quoted, raw, or unquoted), stopping with cur positioned at
// endDelim, at the line's newline, or at EOF — never consuming
// endDelim itself; callers decide whether to consume it.
func (p *parser) parseString(endDelim byte) (*tempString, error) {
	for isLineWhitespace(p.cur) {
		p.advance()
	}

	ts := beginTempString(p.d.arena)

	if p.cur == '{' && p.next == '}' {
		if err := ts.appendByte('{'); err != nil {
			return nil, err
		}
		p.advance()
		if err := ts.appendByte('}'); err != nil {
			return nil, err
		}
		p.advance()
	} else if p.cur == '[' && p.next == ']' {
		if err := ts.appendByte('['); err != nil {
			return nil, err
		}
		p.advance()
		if err := ts.appendByte(']'); err != nil {
			return nil, err
		}
		p.advance()
	}

	switch p.cur {
	case '"', '\'':
		delim := p.cur
		p.advance()
		if err := p.scanDelimited(ts, delim); err != nil {
			return nil, err
		}
		if err := p.skipToEndDelim(endDelim); err != nil {
			return nil, err
		}
	case '`':
		p.advance()
		if err := p.scanDelimited(ts, '`'); err != nil {
			return nil, err
		}
		if err := p.skipToEndDelim(endDelim); err != nil {
			return nil, err
		}
	default:
		for p.cur >= 0 && p.cur != '\n' && p.cur != int(endDelim) && p.cur != '#' {
			if err := ts.appendByte(byte(p.cur)); err != nil {
				return nil, err
			}
			p.advance()
		}
		trimTrailingWhitespace(ts)
		if p.cur == '#' {
			p.skipToEOL()
		}
	}
	return ts, nil
}

// scanDelimited runs the escape-processing scan shared by quoted
// ("/') and raw (`) strings, up to the matching delim, EOL, or EOF.
// If the closing delim is missing, MISSING_END_QUOTE is logged and
// the string built so far is accepted.
func (p *parser) scanDelimited(ts *tempString, delim int) error {
	for p.cur >= 0 && p.cur != '\n' {
		if p.cur == delim {
			p.advance()
			return nil
		}
		if p.cur == '\\' {
			if err := p.parseEscape(ts); err != nil {
				return err
			}
			continue
		}
		if err := ts.appendByte(byte(p.cur)); err != nil {
			return err
		}
		p.advance()
	}
	return p.logErr(ErrMissingEndQuote)
}

// skipToEndDelim is the "quoted/raw termination follow-up": skip
// whitespace looking for endDelim, logging TEXT_AFTER_END_QUOTE once,
// at the first stray non-whitespace, non-comment byte, and skipping
// any further stray bytes silently; a newline first aborts the wait.
// Never consumes endDelim.
func (p *parser) skipToEndDelim(endDelim byte) error {
	loggedOnce := false
	for {
		if p.cur == int(endDelim) || p.cur < 0 || p.cur == '\n' {
			return nil
		}
		if isLineWhitespace(p.cur) {
			p.advance()
			continue
		}
		if p.cur == '#' {
			p.skipToEOL()
			continue
		}
		if !loggedOnce {
			if abortErr := p.logErr(ErrTextAfterEndQuote); abortErr != nil {
				return abortErr
			}
			loggedOnce = true
		}
		p.advance()
	}
}

func trimTrailingWhitespace(ts *tempString) {
	n := ts.len()
	b := ts.bytes()
	for n > 0 && isLineWhitespace(int(b[n-1])) {
		n--
	}
	trimmed := n
	// Rewind the arena past the trimmed trailing whitespace; safe
	// because nothing has been allocated since this tempString began.
	ts.a.Rewind(ts.start + uintptr(trimmed))
	ts.n = trimmed
}

func isHexDigit(b int) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b int) int {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

// parseEscape handles one backslash escape sequence, per the fixed
// grammar: conventional single-byte escapes, \ooo octal (clamped to
// 255), \xHH hex, \uHHHH/\UHHHHHHHH Unicode codepoints encoded as
// UTF-8, and the invalid-escape fallback that keeps the backslash
// literal.
func (p *parser) parseEscape(ts *tempString) error {
	p.advance() // consume '\\'
	switch p.cur {
	case 'a':
		p.advance()
		return ts.appendByte(0x07)
	case 'b':
		p.advance()
		return ts.appendByte(0x08)
	case 'e':
		p.advance()
		return ts.appendByte(0x1B)
	case 'f':
		p.advance()
		return ts.appendByte(0x0C)
	case 'n':
		p.advance()
		return ts.appendByte('\n')
	case 'r':
		p.advance()
		return ts.appendByte('\r')
	case 't':
		p.advance()
		return ts.appendByte('\t')
	case '\\', '\'', '"', '`', '?':
		b := byte(p.cur)
		p.advance()
		return ts.appendByte(b)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		val := 0
		for n := 0; n < 3 && p.cur >= '0' && p.cur <= '7'; n++ {
			val = val*8 + (p.cur - '0')
			p.advance()
		}
		if val > 255 {
			val = 255
		}
		return ts.appendByte(byte(val))
	case 'x':
		p.advance()
		val := 0
		n := 0
		for n < 2 && isHexDigit(p.cur) {
			val = val*16 + hexVal(p.cur)
			p.advance()
			n++
		}
		if n == 0 {
			if err := ts.appendByte('\\'); err != nil {
				return err
			}
			if err := ts.appendByte('x'); err != nil {
				return err
			}
			return p.logErr(ErrTextInvalidEscape)
		}
		return ts.appendByte(byte(val))
	case 'u', 'U':
		marker := byte(p.cur)
		maxDigits := 4
		if marker == 'U' {
			maxDigits = 8
		}
		p.advance()
		val := 0
		var digits []byte
		for len(digits) < maxDigits && isHexDigit(p.cur) {
			val = val*16 + hexVal(p.cur)
			digits = append(digits, byte(p.cur))
			p.advance()
		}
		if len(digits) < maxDigits {
			// Too few hex digits: the partial escape is written literally
			// and parsing resumes after it, unlogged.
			if err := ts.appendByte('\\'); err != nil {
				return err
			}
			if err := ts.appendByte(marker); err != nil {
				return err
			}
			for _, db := range digits {
				if err := ts.appendByte(db); err != nil {
					return err
				}
			}
			return nil
		}
		if val > 0x10FFFF {
			if err := ts.appendByte('\\'); err != nil {
				return err
			}
			if err := ts.appendByte(marker); err != nil {
				return err
			}
			for _, db := range digits {
				if err := ts.appendByte(db); err != nil {
					return err
				}
			}
			return p.logErr(ErrTextInvalidEscape)
		}
		return appendCodepoint(ts, uint32(val))
	default:
		if err := ts.appendByte('\\'); err != nil {
			return err
		}
		return p.logErr(ErrTextInvalidEscape)
	}
}

// appendCodepoint encodes a unicode escape's codepoint as UTF-8 and
// appends the bytes to ts. It follows the same bit-packing the
// original C encoder uses rather than unicode/utf8's EncodeRune, so
// that surrogate halves (0xD800-0xDFFF) are still emitted as ordinary
// 3-byte sequences instead of being replaced with U+FFFD. cp is
// assumed to already be within 0-0x10FFFF.
func appendCodepoint(ts *tempString, cp uint32) error {
	switch {
	case cp <= 0x7F:
		return ts.appendByte(byte(cp))
	case cp <= 0x7FF:
		return appendBytes(ts,
			0b11000000|byte(cp>>6&0x1F),
			0b10000000|byte(cp&0x3F),
		)
	case cp <= 0xFFFF:
		return appendBytes(ts,
			0b11100000|byte(cp>>12&0x0F),
			0b10000000|byte(cp>>6&0x3F),
			0b10000000|byte(cp&0x3F),
		)
	default:
		return appendBytes(ts,
			0b11110000|byte(cp>>18&0x07),
			0b10000000|byte(cp>>12&0x3F),
			0b10000000|byte(cp>>6&0x3F),
			0b10000000|byte(cp&0x3F),
		)
	}
}

func appendBytes(ts *tempString, bs ...byte) error {
	for _, b := range bs {
		if err := ts.appendByte(b); err != nil {
			return err
		}
	}
	return nil
}
