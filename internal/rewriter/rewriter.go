// Package rewriter applies the block pipeline to one document's text.
package rewriter

import (
	"context"
	"fmt"
	"strings"

	"mdembed/internal/formatter"
	"mdembed/internal/parser"
	"mdembed/pkg/types"
)

// Locator yields the document's top-level blocks in order.
type Locator interface {
	Locate(text string) ([]*types.Block, error)
}

// Resolver produces normalized content for a block configuration.
type Resolver interface {
	Resolve(ctx context.Context, cfg *types.BlockConfig, docPath string) (string, error)
}

// Rewriter rebuilds a document's text with every non-ignored block's
// interior replaced by its canonical body.
type Rewriter struct {
	locator  Locator
	resolver Resolver
}

// New creates a Rewriter.
func New(locator Locator, resolver Resolver) *Rewriter {
	return &Rewriter{
		locator:  locator,
		resolver: resolver,
	}
}

// Rewrite processes doc's blocks in document order and fills doc.NewText and
// doc.Changed. Any block failure aborts the document: the partially built
// buffer is discarded and nothing is written.
func (r *Rewriter) Rewrite(ctx context.Context, doc *types.Document) error {
	blocks, err := r.locator.Locate(doc.Text)
	if err != nil {
		return fmt.Errorf("failed to locate blocks: %w", err)
	}

	var b strings.Builder
	prev := 0

	for _, block := range blocks {
		// ignore ブロックは内側のマーカーごとそのまま残す
		if block.Ignore {
			continue
		}

		cfg, err := parser.ParseConfig(block.RawConfig)
		if err != nil {
			return err
		}

		content, err := r.resolver.Resolve(ctx, cfg, doc.Path)
		if err != nil {
			return err
		}

		body := formatter.Format(cfg, content, block.Dialect)

		// マーカー自体（方言・サフィックス込み）は原文のまま、内側だけ差し替える
		b.WriteString(doc.Text[prev:block.InnerFrom])
		b.WriteString(body)
		prev = block.InnerTo
	}
	b.WriteString(doc.Text[prev:])

	doc.NewText = b.String()
	doc.Changed = doc.NewText != doc.Text
	return nil
}
