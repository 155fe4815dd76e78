// Package parser locates directive marker pairs in document text and parses
// each block's inline JSON configuration.
package parser

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"mdembed/pkg/types"
)

// Locator scans document text for START/END directive markers of both
// comment dialects and pairs them into blocks.
type Locator struct {
	prefix string
}

// New creates a Locator for markers carrying the given keyword prefix,
// e.g. prefix "MDEMBED" matches <!-- MDEMBED:START ... -->.
func New(prefix string) *Locator {
	return &Locator{prefix: prefix}
}

type tokenKind int

const (
	tokenStart tokenKind = iota
	tokenEnd
)

// token is one recognized directive marker in the document text.
type token struct {
	kind    tokenKind
	dialect types.Dialect
	suffix  string
	config  string // raw config text, START tokens only
	from    int    // offset of the opening delimiter
	to      int    // offset just past the closing delimiter
	ignore  bool   // START carries ignore: true
}

// Locate returns every top-level block in document order. Blocks physically
// nested inside another block are suppressed: a non-ignored outer block owns
// its whole interior, and an ignored block's interior is inert text.
// Unmatched or overlapping markers are a structural failure for the document.
func (l *Locator) Locate(text string) ([]*types.Block, error) {
	tokens, err := l.scan(text)
	if err != nil {
		return nil, err
	}

	blocks, err := pair(tokens)
	if err != nil {
		return nil, err
	}

	return filterTopLevel(blocks)
}

// scan tokenizes the document into a flat stream of START/END markers.
// ignore: true な START はこの段階で先読みし、その内部は一切トークン化しない。
// ここでは JSON 構文のみ見る。厳密な検証エラーは Rewriter 側で報告される。
func (l *Locator) scan(text string) ([]token, error) {
	var tokens []token

	pos := 0
	for pos < len(text) {
		next, dialect, found := nextOpen(text, pos)
		if !found {
			break
		}

		tok, after, ok, err := l.scanMarker(text, next, dialect)
		if err != nil {
			return nil, err
		}
		if !ok {
			// 通常のコメントなので読み飛ばす
			pos = next + len(dialect.Open())
			continue
		}

		if tok.kind == tokenStart && peekIgnore(tok.config) {
			tok.ignore = true
			end, err := l.skipIgnored(text, tok)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok, end)
			pos = end.to
			continue
		}

		tokens = append(tokens, tok)
		pos = after
	}

	return tokens, nil
}

// nextOpen finds the nearest comment opening delimiter at or after pos.
func nextOpen(text string, pos int) (int, types.Dialect, bool) {
	next := -1
	var dialect types.Dialect
	for _, d := range []types.Dialect{types.DialectHTML, types.DialectJSX} {
		if i := strings.Index(text[pos:], d.Open()); i >= 0 && (next < 0 || pos+i < next) {
			next = pos + i
			dialect = d
		}
	}
	return next, dialect, next >= 0
}

// skipIgnored advances past the interior of an ignored block to its END
// marker without tokenizing the interior. Only markers of the same dialect
// and suffix count toward the depth; everything else inside is inert text.
func (l *Locator) skipIgnored(text string, start token) (token, error) {
	depth := 1
	pos := start.to
	for pos < len(text) {
		next, dialect, found := nextOpen(text, pos)
		if !found {
			break
		}

		tok, after, ok, err := l.scanMarker(text, next, dialect)
		if err != nil || !ok {
			// 不活性テキストなのでマーカーとして扱わない
			pos = next + len(dialect.Open())
			continue
		}
		if tok.dialect != start.dialect || tok.suffix != start.suffix {
			pos = after
			continue
		}

		if tok.kind == tokenStart {
			depth++
		} else {
			depth--
			if depth == 0 {
				return tok, nil
			}
		}
		pos = after
	}
	return token{}, fmt.Errorf("START%s marker at offset %d has no matching END%s", start.suffix, start.from, start.suffix)
}

// scanMarker parses a candidate marker starting at the opening delimiter.
// It returns ok=false when the comment is not a directive marker.
func (l *Locator) scanMarker(text string, from int, dialect types.Dialect) (token, int, bool, error) {
	pos := from + len(dialect.Open())
	pos = skipSpace(text, pos)

	startKeyword := l.prefix + ":START"
	endKeyword := l.prefix + ":END"

	var kind tokenKind
	switch {
	case strings.HasPrefix(text[pos:], startKeyword):
		kind = tokenStart
		pos += len(startKeyword)
	case strings.HasPrefix(text[pos:], endKeyword):
		kind = tokenEnd
		pos += len(endKeyword)
	default:
		return token{}, 0, false, nil
	}

	// サフィックスは START/END 直後の空白までの連続文字列
	suffixEnd := pos
	for suffixEnd < len(text) && !unicode.IsSpace(rune(text[suffixEnd])) && !strings.HasPrefix(text[suffixEnd:], dialect.Close()) {
		suffixEnd++
	}
	suffix := text[pos:suffixEnd]
	pos = suffixEnd

	closeIdx := strings.Index(text[pos:], dialect.Close())
	if closeIdx < 0 {
		return token{}, 0, false, fmt.Errorf("unterminated %s marker at offset %d", dialect, from)
	}

	tok := token{
		kind:    kind,
		dialect: dialect,
		suffix:  suffix,
		from:    from,
		to:      pos + closeIdx + len(dialect.Close()),
	}
	if kind == tokenStart {
		tok.config = strings.TrimSpace(text[pos : pos+closeIdx])
	}
	return tok, tok.to, true, nil
}

func skipSpace(text string, pos int) int {
	for pos < len(text) && unicode.IsSpace(rune(text[pos])) {
		pos++
	}
	return pos
}

// pair matches each START with the nearest following END of identical suffix
// and dialect using a per-suffix stack, tolerating interleaving of
// differently named blocks.
func pair(tokens []token) ([]*types.Block, error) {
	type key struct {
		dialect types.Dialect
		suffix  string
	}

	open := make(map[key][]token)
	var blocks []*types.Block

	for _, tok := range tokens {
		k := key{tok.dialect, tok.suffix}
		if tok.kind == tokenStart {
			open[k] = append(open[k], tok)
			continue
		}

		stack := open[k]
		if len(stack) == 0 {
			return nil, fmt.Errorf("END%s marker at offset %d has no matching START%s", tok.suffix, tok.from, tok.suffix)
		}
		start := stack[len(stack)-1]
		open[k] = stack[:len(stack)-1]

		blocks = append(blocks, &types.Block{
			Suffix:    start.suffix,
			Dialect:   start.dialect,
			RawConfig: start.config,
			Start:     start.from,
			InnerFrom: start.to,
			InnerTo:   tok.from,
			End:       tok.to,
			Ignore:    start.ignore,
		})
	}

	for _, stack := range open {
		if len(stack) > 0 {
			tok := stack[len(stack)-1]
			return nil, fmt.Errorf("START%s marker at offset %d has no matching END%s", tok.suffix, tok.from, tok.suffix)
		}
	}

	return blocks, nil
}

// filterTopLevel orders blocks by position and drops blocks contained inside
// another block. Partial overlap between differently named pairs cannot be
// rewritten consistently and is rejected.
func filterTopLevel(blocks []*types.Block) ([]*types.Block, error) {
	sortBlocks(blocks)

	var top []*types.Block
	for _, b := range blocks {
		if len(top) > 0 {
			prev := top[len(top)-1]
			if b.End <= prev.End {
				continue // prev の内部にあるマーカーは不活性
			}
			if b.Start < prev.End {
				return nil, fmt.Errorf("block START%s at offset %d overlaps block START%s at offset %d", b.Suffix, b.Start, prev.Suffix, prev.Start)
			}
		}
		top = append(top, b)
	}
	return top, nil
}

func sortBlocks(blocks []*types.Block) {
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Start < blocks[j].Start
	})
}

// peekIgnore reports whether a raw config carries ignore: true, tolerating
// any validation problem other than JSON syntax.
func peekIgnore(raw string) bool {
	var cfg types.BlockConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return false
	}
	return cfg.Ignore
}

// ParseConfig parses the JSON text captured between a START marker and its
// closing delimiter into a validated BlockConfig with defaults applied.
// Unknown fields are rejected so a misspelled field fails loudly instead of
// being silently dropped.
func ParseConfig(raw string) (*types.BlockConfig, error) {
	var cfg types.BlockConfig
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, &types.ConfigParseError{Raw: raw, Err: err}
	}
	if dec.More() {
		return nil, &types.ConfigParseError{Raw: raw, Err: fmt.Errorf("unexpected trailing data after config object")}
	}

	if cfg.Type == "" {
		cfg.Type = types.BlockTypeFile
	}
	if cfg.Type != types.BlockTypeCommand && cfg.Type != types.BlockTypeFile {
		return nil, &types.InvalidBlockTypeError{Type: cfg.Type}
	}

	if cfg.Value == "" {
		return nil, &types.ConfigParseError{Raw: raw, Err: fmt.Errorf("value must be a non-empty string")}
	}

	return &cfg, nil
}
