// Package rtf provides a Normaliser for Rich Text Format documents.
// Control words are interpreted just enough to recover the visible text.
package rtf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles RTF documents.
type Normaliser struct{}

// New creates a new RTF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []domain.FormatTag {
	return []domain.FormatTag{domain.FormatRTF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise strips control words and returns the document as one segment.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw.Content), []byte(`{\rtf`)) {
		return nil, fmt.Errorf("%w: missing RTF header", domain.ErrCorruptInput)
	}

	return []domain.Segment{{
		Text:    Strip(string(raw.Content)),
		Locator: domain.Locator{Source: raw.Filename},
	}}, nil
}

// Destinations whose content is never visible text.
var skippedDestinations = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"pict": true, "object": true, "header": true, "footer": true,
	"headerl": true, "headerr": true, "footerl": true, "footerr": true,
	"listtable": true, "listoverridetable": true, "rsidtbl": true,
	"generator": true, "themedata": true, "colorschememapping": true,
	"latentstyles": true, "datastore": true, "xmlnstbl": true,
}

// cp1252 maps the 0x80-0x9F range of Windows-1252 to Unicode.
var cp1252 = [32]rune{
	'€', 0, '‚', 'ƒ', '„', '…', '†', '‡', 'ˆ', '‰', 'Š', '‹', 'Œ', 0, 'Ž', 0,
	0, '‘', '’', '“', '”', '•', '–', '—', '˜', '™', 'š', '›', 'œ', 0, 'ž', 'Ÿ',
}

type groupState struct {
	skip       bool
	ucSkip     int
	starPrefix bool
}

// Strip converts RTF source to plain text.
func Strip(src string) string {
	var (
		out     strings.Builder
		stack   []groupState
		state   = groupState{ucSkip: 1}
		pending int // fallback characters still to drop after \uN
	)

	emit := func(r rune) {
		if pending > 0 {
			pending--
			return
		}
		if !state.skip {
			out.WriteRune(r)
		}
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '{':
			stack = append(stack, state)
			state.starPrefix = false
		case '}':
			if len(stack) > 0 {
				state = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
		case '\r', '\n':
		case '\\':
			if i+1 >= len(src) {
				break
			}
			next := src[i+1]
			switch {
			case next == '\\' || next == '{' || next == '}':
				emit(rune(next))
				i++
			case next == '*':
				state.starPrefix = true
				i++
			case next == '~':
				emit(' ')
				i++
			case next == '_':
				emit('-')
				i++
			case next == '-':
				i++
			case next == '\'':
				if i+3 < len(src) {
					if b, err := strconv.ParseUint(src[i+2:i+4], 16, 8); err == nil {
						emit(decodeByte(byte(b)))
					}
				}
				i += 3
			case next == '\r' || next == '\n':
				emit('\n')
				i++
			case isLetter(next):
				j := i + 1
				for j < len(src) && isLetter(src[j]) {
					j++
				}
				word := src[i+1 : j]
				k := j
				if k < len(src) && (src[k] == '-' || isDigit(src[k])) {
					k++
					for k < len(src) && isDigit(src[k]) {
						k++
					}
				}
				param, hasParam := 0, k > j
				if hasParam {
					param, _ = strconv.Atoi(src[j:k])
				}
				if k < len(src) && src[k] == ' ' {
					k++
				}
				i = k - 1

				if state.starPrefix || skippedDestinations[word] {
					state.skip = true
					state.starPrefix = false
					continue
				}

				switch word {
				case "par", "line", "sect", "page":
					emit('\n')
				case "tab", "cell":
					emit('\t')
				case "row":
					emit('\n')
				case "emdash":
					emit('—')
				case "endash":
					emit('–')
				case "bullet":
					emit('•')
				case "lquote":
					emit('‘')
				case "rquote":
					emit('’')
				case "ldblquote":
					emit('“')
				case "rdblquote":
					emit('”')
				case "uc":
					if hasParam {
						state.ucSkip = param
					}
				case "u":
					if hasParam {
						if param < 0 {
							param += 65536
						}
						emit(rune(param))
						pending = state.ucSkip
					}
				}
			default:
				i++
			}
		default:
			emit(rune(c))
		}
	}

	return cleanup(out.String())
}

func decodeByte(b byte) rune {
	if b >= 0x80 && b <= 0x9F {
		if r := cp1252[b-0x80]; r != 0 {
			return r
		}
	}
	return rune(b)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// cleanup trims trailing spaces per line and collapses blank runs.
func cleanup(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			line = ""
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
