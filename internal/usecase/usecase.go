// Package usecase orchestrates a full mdembed run over a set of documents.
package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/sync/errgroup"

	"mdembed/internal/config"
	"mdembed/internal/discovery"
	"mdembed/internal/executor"
	"mdembed/internal/parser"
	"mdembed/internal/resolver"
	"mdembed/internal/rewriter"
	"mdembed/pkg/types"
)

// DiscovererInterface はドキュメント探索の抽象化
type DiscovererInterface interface {
	Discover(basePath string) ([]string, error)
}

// RewriterInterface はドキュメント書き換えの抽象化
type RewriterInterface interface {
	Rewrite(ctx context.Context, doc *types.Document) error
}

// ConfigLoaderInterface は設定読み込みの抽象化
type ConfigLoaderInterface interface {
	LoadConfig(configPath string) (*config.Config, error)
}

// UpdateDocsRequest は UpdateDocs ユースケースのリクエスト
type UpdateDocsRequest struct {
	InputPath      string
	ConfigFile     string
	Pattern        string // overrides the config file when non-empty
	Marker         string // overrides the config file when non-empty
	Quiet          bool
	ForwardEnv     bool
	FollowSymlinks bool
	DryRun         bool
}

// UpdateDocsResponse は UpdateDocs ユースケースのレスポンス
type UpdateDocsResponse struct {
	ProcessedDocs int
	ChangedDocs   int
	FailedDocs    int
	WasDryRun     bool
}

// UpdateDocsUsecase runs the block pipeline over every discovered document.
type UpdateDocsUsecase struct {
	fs           billy.Filesystem
	discoverer   DiscovererInterface
	rewriter     RewriterInterface
	configLoader ConfigLoaderInterface
}

// NewUpdateDocsUsecase creates a usecase over the real filesystem.
func NewUpdateDocsUsecase() *UpdateDocsUsecase {
	return &UpdateDocsUsecase{
		fs:           osfs.New("/"),
		discoverer:   nil, // Executeで設定付きで初期化
		rewriter:     nil, // Executeで初期化
		configLoader: &DefaultConfigLoader{},
	}
}

// NewUpdateDocsUsecaseWithDeps は依存関係を注入して UpdateDocsUsecase を作成
func NewUpdateDocsUsecaseWithDeps(fs billy.Filesystem, d DiscovererInterface, r RewriterInterface, c ConfigLoaderInterface) *UpdateDocsUsecase {
	return &UpdateDocsUsecase{
		fs:           fs,
		discoverer:   d,
		rewriter:     r,
		configLoader: c,
	}
}

// DefaultConfigLoader wraps config.LoadConfig for dependency injection.
type DefaultConfigLoader struct{}

// LoadConfig loads configuration using the standard config loader.
func (d *DefaultConfigLoader) LoadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfig(configPath)
	}

	// 設定ファイルが指定されていない場合はデフォルトを探す
	defaultConfigs := []string{
		"mdembed.yaml",
		"mdembed.yml",
		".mdembed.yaml",
		".mdembed.yml",
	}

	for _, defaultConfig := range defaultConfigs {
		if _, err := os.Stat(defaultConfig); err == nil {
			return config.LoadConfig(defaultConfig)
		}
	}

	return &config.Config{}, nil
}

// docResult は1ドキュメントの処理結果
type docResult struct {
	path    string
	changed bool
	err     error
}

// Execute runs the pipeline. Documents are independent and are processed in
// parallel; one document's failure never prevents the others from
// completing, but any failure makes the run's error non-nil.
func (uc *UpdateDocsUsecase) Execute(ctx context.Context, req *UpdateDocsRequest) (*UpdateDocsResponse, error) {
	cfg, err := uc.prepareConfig(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	paths, err := uc.discoverDocuments(req, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to discover documents: %w", err)
	}

	if len(paths) == 0 {
		if !cfg.Quiet {
			fmt.Println("No documents found to update")
		}
		return &UpdateDocsResponse{WasDryRun: req.DryRun}, nil
	}

	if !cfg.Quiet {
		fmt.Printf("Found %d documents matching %q\n", len(paths), cfg.EffectivePattern())
	}

	rw := uc.rewriter
	if rw == nil {
		rw = uc.buildRewriter(cfg)
	}

	results := uc.processDocuments(ctx, rw, paths, req.DryRun, cfg.Quiet)

	response := &UpdateDocsResponse{
		ProcessedDocs: len(results),
		WasDryRun:     req.DryRun,
	}
	for _, res := range results {
		if res.err != nil {
			response.FailedDocs++
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", res.path, res.err)
			continue
		}
		if res.changed {
			response.ChangedDocs++
		}
	}

	uc.displayResults(req, cfg, response)

	if response.FailedDocs > 0 {
		return response, fmt.Errorf("%d of %d documents failed", response.FailedDocs, response.ProcessedDocs)
	}
	return response, nil
}

// prepareConfig loads the run config and applies request overrides.
func (uc *UpdateDocsUsecase) prepareConfig(req *UpdateDocsRequest) (*config.Config, error) {
	cfg, err := uc.configLoader.LoadConfig(req.ConfigFile)
	if err != nil {
		return nil, err
	}

	// コマンドラインフラグが設定ファイルより優先される
	if req.Pattern != "" {
		cfg.Pattern = req.Pattern
	}
	if req.Marker != "" {
		cfg.Marker = req.Marker
	}
	cfg.Quiet = cfg.Quiet || req.Quiet
	cfg.ForwardEnv = cfg.ForwardEnv || req.ForwardEnv
	cfg.FollowSymlinks = cfg.FollowSymlinks || req.FollowSymlinks

	return cfg, nil
}

// discoverDocuments resolves the document set for the run as absolute paths.
func (uc *UpdateDocsUsecase) discoverDocuments(req *UpdateDocsRequest, cfg *config.Config) ([]string, error) {
	d := uc.discoverer
	if d == nil {
		d = discovery.New(cfg)
	}

	paths, err := d.Discover(req.InputPath)
	if err != nil {
		return nil, err
	}

	abs := make([]string, 0, len(paths))
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", path, err)
		}
		abs = append(abs, absPath)
	}
	return abs, nil
}

// buildRewriter assembles the per-run pipeline from the effective config.
func (uc *UpdateDocsUsecase) buildRewriter(cfg *config.Config) RewriterInterface {
	exec := executor.New(time.Duration(cfg.CommandTimeout) * time.Second)
	res := resolver.New(exec, &fsReader{fs: uc.fs}, cfg.ForwardEnv)
	return rewriter.New(parser.New(cfg.EffectiveMarker()), res)
}

// processDocuments fans the documents out over a bounded worker pool.
// 置換はドキュメント内で順次、ドキュメント間は並列。
func (uc *UpdateDocsUsecase) processDocuments(ctx context.Context, rw RewriterInterface, paths []string, dryRun, quiet bool) []docResult {
	results := make([]docResult, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		g.Go(func() error {
			changed, err := uc.processDocument(ctx, rw, path, dryRun)
			mu.Lock()
			defer mu.Unlock()
			results[i] = docResult{path: path, changed: changed, err: err}
			if err == nil && !quiet {
				switch {
				case changed && dryRun:
					fmt.Printf("  Would update: %s\n", path)
				case changed:
					fmt.Printf("  Updated: %s\n", path)
				default:
					fmt.Printf("  Unchanged: %s\n", path)
				}
			}
			return nil // ドキュメント単位のエラーは結果に残して続行する
		})
	}
	_ = g.Wait()

	return results
}

// processDocument loads, rewrites and (outside dry runs) persists one
// document. The document is written at most once and only when changed.
func (uc *UpdateDocsUsecase) processDocument(ctx context.Context, rw RewriterInterface, path string, dryRun bool) (bool, error) {
	data, err := util.ReadFile(uc.fs, path)
	if err != nil {
		return false, &types.DocumentReadError{Path: path, Err: err}
	}

	doc := &types.Document{Path: path, Text: string(data)}
	if err := rw.Rewrite(ctx, doc); err != nil {
		return false, err
	}

	if !doc.Changed {
		return false, nil
	}

	if !dryRun {
		if err := util.WriteFile(uc.fs, path, []byte(doc.NewText), 0600); err != nil {
			return true, fmt.Errorf("failed to write document %s: %w", path, err)
		}
	}
	return true, nil
}

// displayResults shows the run outcome to the user.
func (uc *UpdateDocsUsecase) displayResults(req *UpdateDocsRequest, cfg *config.Config, res *UpdateDocsResponse) {
	if cfg.Quiet {
		return
	}

	if req.DryRun {
		fmt.Printf("Plan completed: %d of %d documents would change\n", res.ChangedDocs, res.ProcessedDocs)
		return
	}
	fmt.Printf("Updated %d of %d documents\n", res.ChangedDocs, res.ProcessedDocs)
}

// fsReader adapts the billy filesystem to the resolver's FileReader.
type fsReader struct {
	fs billy.Filesystem
}

func (r *fsReader) ReadFile(path string) ([]byte, error) {
	return util.ReadFile(r.fs, path)
}
