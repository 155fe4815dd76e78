// Package types defines the core data structures used throughout the mdembed application.
package types

// Block type values accepted in a block configuration.
const (
	BlockTypeCommand = "command"
	BlockTypeFile    = "file"
)

// Dialect identifies the comment syntax a directive marker is written in.
type Dialect int

const (
	// DialectHTML is an HTML comment marker: <!-- ... -->
	DialectHTML Dialect = iota
	// DialectJSX is a JSX expression comment marker: {/* ... */}
	DialectJSX
)

// Open returns the comment opening delimiter for the dialect.
func (d Dialect) Open() string {
	if d == DialectJSX {
		return "{/*"
	}
	return "<!--"
}

// Close returns the comment closing delimiter for the dialect.
func (d Dialect) Close() string {
	if d == DialectJSX {
		return "*/}"
	}
	return "-->"
}

// Comment renders text as a comment in the dialect.
func (d Dialect) Comment(text string) string {
	return d.Open() + " " + text + " " + d.Close()
}

func (d Dialect) String() string {
	if d == DialectJSX {
		return "jsx"
	}
	return "html"
}

// BlockConfig is a block's validated, defaulted inline configuration.
type BlockConfig struct {
	Type        string            `json:"type"`
	Value       string            `json:"value"`
	Trim        *bool             `json:"trim"`
	HideValue   bool              `json:"hideValue"`
	Language    string            `json:"language"`
	Environment map[string]string `json:"environment"`
	Ignore      bool              `json:"ignore"`
}

// TrimEnabled reports the effective trim policy (default true).
func (c *BlockConfig) TrimEnabled() bool {
	return c.Trim == nil || *c.Trim
}

// Block is a document region delimited by a matched START/END marker pair.
// Offsets are byte indices into the owning document's text.
type Block struct {
	Suffix    string  // Name suffix following START/END (empty if unnamed)
	Dialect   Dialect // Comment dialect of both markers
	RawConfig string  // Configuration text between START and the marker close, unparsed
	Start     int     // Offset of the START marker's opening delimiter
	InnerFrom int     // Offset just past the START marker's closing delimiter
	InnerTo   int     // Offset of the END marker's opening delimiter
	End       int     // Offset just past the END marker's closing delimiter
	Ignore    bool    // True when the block config carries ignore: true
}

// Interior returns the block's current interior text.
func (b *Block) Interior(doc string) string {
	return doc[b.InnerFrom:b.InnerTo]
}

// Document is one file processed by a run.
type Document struct {
	Path    string // File path as discovered
	Text    string // Original text as loaded
	NewText string // Rewritten text; equal to Text when nothing changed
	Changed bool   // True when NewText differs from Text
}
