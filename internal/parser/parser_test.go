package parser_test

import (
	"strings"
	"testing"

	"mdembed/internal/parser"
	"mdembed/pkg/types"
)

func TestLocateSingleBlock(t *testing.T) {
	doc := `# Title

<!-- MDEMBED:START { "type": "command", "value": "echo hi" } -->
old body
<!-- MDEMBED:END -->

trailing text
`

	blocks, err := parser.New("MDEMBED").Locate(doc)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}

	b := blocks[0]
	if b.Dialect != types.DialectHTML {
		t.Errorf("Expected HTML dialect, got %s", b.Dialect)
	}
	if b.Suffix != "" {
		t.Errorf("Expected empty suffix, got %q", b.Suffix)
	}
	if b.RawConfig != `{ "type": "command", "value": "echo hi" }` {
		t.Errorf("Unexpected raw config: %q", b.RawConfig)
	}
	if got := b.Interior(doc); got != "\nold body\n" {
		t.Errorf("Unexpected interior: %q", got)
	}
}

func TestLocateJSXBlock(t *testing.T) {
	doc := `{/* MDEMBED:START {"value": "snippet.ts"} */}
body
{/* MDEMBED:END */}`

	blocks, err := parser.New("MDEMBED").Locate(doc)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Dialect != types.DialectJSX {
		t.Errorf("Expected JSX dialect, got %s", blocks[0].Dialect)
	}
}

func TestLocateMultilineConfig(t *testing.T) {
	doc := `<!--
  MDEMBED:START
  {
    "type": "file",
    "value": "example.go"
  }
-->
<!-- MDEMBED:END -->`

	blocks, err := parser.New("MDEMBED").Locate(doc)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if !strings.Contains(blocks[0].RawConfig, `"value": "example.go"`) {
		t.Errorf("Raw config lost the payload: %q", blocks[0].RawConfig)
	}
}

func TestLocateNamedPairs(t *testing.T) {
	// 名前付きペアは同じサフィックス同士でのみ対応する
	doc := `<!-- MDEMBED:START_FOO {"value": "a.txt"} -->
foo body
<!-- MDEMBED:END_FOO -->
<!-- MDEMBED:START_BAR {"value": "b.txt"} -->
bar body
<!-- MDEMBED:END_BAR -->`

	blocks, err := parser.New("MDEMBED").Locate(doc)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Suffix != "_FOO" || blocks[1].Suffix != "_BAR" {
		t.Errorf("Unexpected suffixes: %q, %q", blocks[0].Suffix, blocks[1].Suffix)
	}
	if blocks[0].Start > blocks[1].Start {
		t.Error("Blocks are not in document order")
	}
}

func TestLocateMismatchedNameFails(t *testing.T) {
	doc := `<!-- MDEMBED:START_FOO {"value": "a.txt"} -->
body
<!-- MDEMBED:END_BAR -->`

	_, err := parser.New("MDEMBED").Locate(doc)
	if err == nil {
		t.Fatal("Expected pairing error, got nil")
	}
}

func TestLocateUnmatchedStartFails(t *testing.T) {
	doc := `<!-- MDEMBED:START {"value": "a.txt"} -->`

	_, err := parser.New("MDEMBED").Locate(doc)
	if err == nil {
		t.Fatal("Expected error for START without END, got nil")
	}
	if !strings.Contains(err.Error(), "no matching END") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestLocateEndWithoutStartFails(t *testing.T) {
	doc := `text
<!-- MDEMBED:END -->`

	_, err := parser.New("MDEMBED").Locate(doc)
	if err == nil {
		t.Fatal("Expected error for END without START, got nil")
	}
	if !strings.Contains(err.Error(), "no matching START") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestLocateIgnoredBlockSuppressesNestedMarkers(t *testing.T) {
	doc := `<!-- MDEMBED:START {"value": "x", "ignore": true} -->
<!-- MDEMBED:START {"value": "inner.txt"} -->
inner body
<!-- MDEMBED:END -->
<!-- MDEMBED:END -->`

	blocks, err := parser.New("MDEMBED").Locate(doc)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	// ignore ブロックの内側のマーカーは不活性なので、外側の1ブロックだけ見える
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if !blocks[0].Ignore {
		t.Error("Expected outer block to be marked ignored")
	}
	if !strings.Contains(blocks[0].Interior(doc), "inner body") {
		t.Error("Outer block interior should contain the nested markers verbatim")
	}
}

func TestLocateLoneMarkerInsideIgnoredBlock(t *testing.T) {
	// ignore ブロック内の孤立マーカーは不活性テキストであり、対応付けの対象外
	doc := `<!-- MDEMBED:START {"value": "x", "ignore": true} -->
An END marker on its own looks like this:
<!-- MDEMBED:END_EXAMPLE -->
<!-- MDEMBED:END -->`

	blocks, err := parser.New("MDEMBED").Locate(doc)
	if err != nil {
		t.Fatalf("Locate failed on inert marker inside ignored block: %v", err)
	}

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if !blocks[0].Ignore {
		t.Error("Expected the block to be marked ignored")
	}
	if !strings.Contains(blocks[0].Interior(doc), "<!-- MDEMBED:END_EXAMPLE -->") {
		t.Errorf("Lone marker must be preserved verbatim in the interior: %q", blocks[0].Interior(doc))
	}
}

func TestLocateIgnoreOnlyConfig(t *testing.T) {
	// value を持たない ignore ブロックも抑制は働く（検証は書き換え時まで遅延）
	doc := `<!-- MDEMBED:START {"ignore": true} -->
kept
<!-- MDEMBED:END -->`

	blocks, err := parser.New("MDEMBED").Locate(doc)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if len(blocks) != 1 || !blocks[0].Ignore {
		t.Fatalf("Expected a single ignored block, got %+v", blocks)
	}
}

func TestLocateMarkersOutsideIgnoredBlockStayActive(t *testing.T) {
	doc := `<!-- MDEMBED:START {"value": "x", "ignore": true} -->
frozen
<!-- MDEMBED:END -->
<!-- MDEMBED:START {"value": "active.txt"} -->
live
<!-- MDEMBED:END -->`

	blocks, err := parser.New("MDEMBED").Locate(doc)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Ignore == blocks[1].Ignore {
		t.Error("Expected exactly one ignored block")
	}
}

func TestLocateCustomPrefix(t *testing.T) {
	doc := `<!-- DOCS:START {"value": "a.txt"} -->
<!-- DOCS:END -->
<!-- MDEMBED:START {"value": "b.txt"} -->
<!-- MDEMBED:END -->`

	blocks, err := parser.New("DOCS").Locate(doc)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block for DOCS prefix, got %d", len(blocks))
	}
}

func TestLocatePlainCommentsAreSkipped(t *testing.T) {
	doc := `<!-- just a note -->
{/* another note */}
no markers here`

	blocks, err := parser.New("MDEMBED").Locate(doc)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("Expected no blocks, got %d", len(blocks))
	}
}
