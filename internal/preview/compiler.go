package preview

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-authgate/pairgate/internal/core"

	"github.com/evanw/esbuild/pkg/api"
)

// DefaultEntry is compiled when a request names no entry file.
const DefaultEntry = "App.tsx"

// Request is a set of in-memory sources to bundle.
type Request struct {
	Files map[string]string `json:"files"`
	Entry string            `json:"entry,omitempty"`
}

// Result is the bundled output.
type Result struct {
	JS       string   `json:"js"`
	CSS      string   `json:"css"`
	Warnings []string `json:"warnings"`
}

// Options configures a Compiler.
type Options struct {
	CDNBase  string
	MaxFiles int
	MaxBytes int
}

// Compiler bundles untrusted React sources into a single ES module.
type Compiler struct {
	cdnBase  string
	maxFiles int
	maxBytes int
	metrics  core.Recorder
}

func NewCompiler(opts Options, m core.Recorder) *Compiler {
	return &Compiler{
		cdnBase:  strings.TrimRight(opts.CDNBase, "/"),
		maxFiles: opts.MaxFiles,
		maxBytes: opts.MaxBytes,
		metrics:  m,
	}
}

// Compile validates req and bundles it. Validation failures wrap
// ErrInvalidInput; bundler failures are *CompileError.
func (c *Compiler) Compile(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs, err := c.validate(req.Files)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	entry := DefaultEntry
	if req.Entry != "" {
		entry = req.Entry
	}
	entry, err = cleanPath(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if _, ok := fs[entry]; !ok {
		return nil, fmt.Errorf("%w: %w: %s", ErrInvalidInput, ErrEntryNotFound, entry)
	}

	start := time.Now()
	result, err := c.build(fs, entry)
	c.metrics.RecordPreviewCompile(err == nil, time.Since(start))
	return result, err
}

func (c *Compiler) build(fs virtualFS, entry string) (*Result, error) {
	out := api.Build(api.BuildOptions{
		EntryPoints: []string{entry},
		Bundle:      true,
		Write:       false,
		Outdir:      "out",
		Format:      api.FormatESModule,
		Platform:    api.PlatformBrowser,
		Target:      api.ES2020,
		JSX:         api.JSXAutomatic,
		Charset:     api.CharsetUTF8,
		LogLevel:    api.LogLevelSilent,
		Plugins:     []api.Plugin{resolverPlugin(fs, c.cdnBase)},
	})

	if len(out.Errors) > 0 {
		return nil, &CompileError{Messages: formatMessages(out.Errors)}
	}

	result := &Result{Warnings: formatMessages(out.Warnings)}
	for _, f := range out.OutputFiles {
		switch path.Ext(f.Path) {
		case ".js":
			result.JS = string(f.Contents)
		case ".css":
			result.CSS = string(f.Contents)
		}
	}
	return result, nil
}

func (c *Compiler) validate(files map[string]string) (virtualFS, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files", ErrInvalidPath)
	}
	if c.maxFiles > 0 && len(files) > c.maxFiles {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFiles, len(files), c.maxFiles)
	}

	fs := make(virtualFS, len(files))
	total := 0
	for name, src := range files {
		p, err := cleanPath(name)
		if err != nil {
			return nil, err
		}
		if _, ok := loaders[path.Ext(p)]; !ok {
			return nil, fmt.Errorf("%w: unsupported extension: %s", ErrInvalidPath, name)
		}
		if _, dup := fs[p]; dup {
			return nil, fmt.Errorf("%w: duplicate path: %s", ErrInvalidPath, name)
		}
		total += len(src)
		if c.maxBytes > 0 && total > c.maxBytes {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, c.maxBytes)
		}
		fs[p] = src
	}
	return fs, nil
}

// cleanPath normalizes a client-supplied path to a root-relative virtual
// path and rejects anything that could name a location outside the root.
func cleanPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "\\\x00") || strings.HasPrefix(name, "/") ||
		hasScheme(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	p := path.Clean(name)
	if p == "." || escapesRoot(p) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return p, nil
}

func formatMessages(msgs []api.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		text := m.Text
		if loc := m.Location; loc != nil {
			text = fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column, text)
		}
		out = append(out, text)
	}
	return out
}
