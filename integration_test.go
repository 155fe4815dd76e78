package main_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"mdembed/internal/config"
	"mdembed/internal/usecase"
)

// staticDiscoverer returns a fixed document set.
type staticDiscoverer struct {
	paths []string
}

func (d *staticDiscoverer) Discover(string) ([]string, error) {
	return d.paths, nil
}

// quietLoader keeps test output clean.
type quietLoader struct{}

func (quietLoader) LoadConfig(string) (*config.Config, error) {
	return &config.Config{Quiet: true}, nil
}

func newUsecase(fs billy.Filesystem, paths ...string) *usecase.UpdateDocsUsecase {
	return usecase.NewUpdateDocsUsecaseWithDeps(fs, &staticDiscoverer{paths: paths}, nil, quietLoader{})
}

func seed(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	if err := util.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to seed %s: %v", path, err)
	}
}

func read(t *testing.T, fs billy.Filesystem, path string) string {
	t.Helper()
	data, err := util.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestCommandBlockEndToEnd(t *testing.T) {
	fs := memfs.New()
	seed(t, fs, "/work/foo.md", `# Foo

<!-- MDEMBED:START { "type": "command", "value": "echo hi" } -->
<!-- MDEMBED:END -->
`)

	uc := newUsecase(fs, "/work/foo.md")
	res, err := uc.Execute(context.Background(), &usecase.UpdateDocsRequest{InputPath: "/work"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.ChangedDocs != 1 {
		t.Fatalf("Expected one changed document: %+v", res)
	}

	text := read(t, fs, "/work/foo.md")
	for _, want := range []string{"$ echo hi", "\nhi\n", "~~~~~~~~~~bash", "<!-- prettier-ignore -->"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in rewritten document:\n%s", want, text)
		}
	}
}

func TestSecondRunChangesNothing(t *testing.T) {
	fs := memfs.New()
	seed(t, fs, "/work/foo.md", `<!-- MDEMBED:START { "type": "command", "value": "echo hi" } -->
<!-- MDEMBED:END -->
`)

	uc := newUsecase(fs, "/work/foo.md")
	req := &usecase.UpdateDocsRequest{InputPath: "/work"}

	if _, err := uc.Execute(context.Background(), req); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	after := read(t, fs, "/work/foo.md")

	res, err := uc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if res.ChangedDocs != 0 {
		t.Errorf("Second run should be a no-op: %+v", res)
	}
	if read(t, fs, "/work/foo.md") != after {
		t.Error("Second run altered the document")
	}
}

func TestFileBlockResolvesRelativeToDocument(t *testing.T) {
	fs := memfs.New()
	seed(t, fs, "/work/snippets/hello.go", "package main\n\nfunc main() {}\n")
	seed(t, fs, "/work/guide.md", `<!-- MDEMBED:START { "value": "snippets/hello.go" } -->
<!-- MDEMBED:END -->
`)

	uc := newUsecase(fs, "/work/guide.md")
	if _, err := uc.Execute(context.Background(), &usecase.UpdateDocsRequest{InputPath: "/work"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	text := read(t, fs, "/work/guide.md")
	if !strings.Contains(text, "File: snippets/hello.go") {
		t.Errorf("Expected file header:\n%s", text)
	}
	if !strings.Contains(text, "~~~~~~~~~~go") {
		t.Errorf("Expected go language inferred:\n%s", text)
	}
	if !strings.Contains(text, "func main() {}") {
		t.Errorf("Expected file content:\n%s", text)
	}
}

func TestHideValueOmitsHeaders(t *testing.T) {
	fs := memfs.New()
	seed(t, fs, "/work/foo.md", `<!-- MDEMBED:START { "type": "command", "value": "echo hi", "hideValue": true } -->
<!-- MDEMBED:END -->
`)

	uc := newUsecase(fs, "/work/foo.md")
	if _, err := uc.Execute(context.Background(), &usecase.UpdateDocsRequest{InputPath: "/work"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	text := read(t, fs, "/work/foo.md")
	if strings.Contains(text, "$ echo hi") || strings.Contains(text, "File: ") {
		t.Errorf("hideValue document must not contain header lines:\n%s", text)
	}
	if !strings.Contains(text, "\nhi\n") {
		t.Errorf("Expected command output:\n%s", text)
	}
}

func TestEmptyContentFailsWithoutWrite(t *testing.T) {
	fs := memfs.New()
	original := `<!-- MDEMBED:START { "type": "command", "value": "true" } -->
stale
<!-- MDEMBED:END -->
`
	seed(t, fs, "/work/foo.md", original)

	uc := newUsecase(fs, "/work/foo.md")
	res, err := uc.Execute(context.Background(), &usecase.UpdateDocsRequest{InputPath: "/work"})
	if err == nil {
		t.Fatal("Expected run failure for empty content")
	}
	if res.FailedDocs != 1 {
		t.Errorf("Unexpected response: %+v", res)
	}
	if read(t, fs, "/work/foo.md") != original {
		t.Error("Failed document must not be written")
	}
}

func TestSiblingNamedBlocks(t *testing.T) {
	fs := memfs.New()
	seed(t, fs, "/work/foo.md", `<!-- MDEMBED:START_GREETING { "type": "command", "value": "echo hello" } -->
<!-- MDEMBED:END_GREETING -->

<!-- MDEMBED:START_FAREWELL { "type": "command", "value": "echo goodbye" } -->
<!-- MDEMBED:END_FAREWELL -->
`)

	uc := newUsecase(fs, "/work/foo.md")
	if _, err := uc.Execute(context.Background(), &usecase.UpdateDocsRequest{InputPath: "/work"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	text := read(t, fs, "/work/foo.md")
	hello := strings.Index(text, "hello")
	goodbye := strings.Index(text, "goodbye")
	if hello < 0 || goodbye < 0 {
		t.Fatalf("Missing block output:\n%s", text)
	}
	if hello > goodbye {
		t.Errorf("Blocks out of order:\n%s", text)
	}
	// マーカーの名前はそのまま保存される
	for _, marker := range []string{"MDEMBED:START_GREETING", "MDEMBED:END_GREETING", "MDEMBED:START_FAREWELL", "MDEMBED:END_FAREWELL"} {
		if !strings.Contains(text, marker) {
			t.Errorf("Marker %s lost during rewrite:\n%s", marker, text)
		}
	}
}

func TestIgnoredBlockSurvivesRun(t *testing.T) {
	fs := memfs.New()
	original := `<!-- MDEMBED:START { "value": "x", "ignore": true } -->
<!-- MDEMBED:START { "type": "command", "value": "echo nope" } -->
frozen example
<!-- MDEMBED:END -->
<!-- MDEMBED:END -->
`
	seed(t, fs, "/work/foo.md", original)

	uc := newUsecase(fs, "/work/foo.md")
	res, err := uc.Execute(context.Background(), &usecase.UpdateDocsRequest{InputPath: "/work"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.ChangedDocs != 0 {
		t.Errorf("Ignored document should not change: %+v", res)
	}
	if read(t, fs, "/work/foo.md") != original {
		t.Error("Ignored block was modified")
	}
}
