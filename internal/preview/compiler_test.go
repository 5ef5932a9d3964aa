package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-authgate/pairgate/internal/metrics"
	"github.com/go-authgate/pairgate/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testCDN = "https://esm.test"

func newTestCompiler() *Compiler {
	return NewCompiler(Options{
		CDNBase:  testCDN + "/",
		MaxFiles: 64,
		MaxBytes: 512 * 1024,
	}, metrics.NewNoopMetrics())
}

func compileErrorText(t *testing.T, err error) string {
	t.Helper()
	var ce *CompileError
	require.True(t, errors.As(err, &ce), "expected CompileError, got %v", err)
	return strings.Join(ce.Messages, "\n")
}

func TestCompile_BundlesReactApp(t *testing.T) {
	c := newTestCompiler()

	res, err := c.Compile(context.Background(), Request{Files: map[string]string{
		"App.tsx": `import { useState } from "react";
import { Button } from "./components/Button";
import "./styles.css";

export default function App() {
  const [n, setN] = useState(0);
  return <Button label={"clicked " + n} onClick={() => setN(n + 1)} />;
}`,
		"components/Button.tsx": `import data from "../data.json";

export function Button(props: { label: string; onClick: () => void }) {
  return <button title={data.title} onClick={props.onClick}>{props.label}</button>;
}`,
		"styles.css": `.preview-root { color: rebeccapurple; }`,
		"data.json":  `{"title": "hello"}`,
	}})
	require.NoError(t, err)

	assert.Contains(t, res.JS, testCDN+"/react\"")
	assert.Contains(t, res.JS, testCDN+"/react/jsx-runtime")
	assert.Contains(t, res.JS, "clicked ")
	assert.Contains(t, res.JS, "hello")
	assert.NotContains(t, res.JS, "<button")
	assert.Contains(t, res.CSS, "rebeccapurple")
}

func TestCompile_CustomEntry(t *testing.T) {
	c := newTestCompiler()

	res, err := c.Compile(context.Background(), Request{
		Entry: "src/main.jsx",
		Files: map[string]string{
			"src/main.jsx": `import { createRoot } from "react-dom/client";
createRoot(document.body).render(<p>entry</p>);`,
		},
	})
	require.NoError(t, err)
	assert.Contains(t, res.JS, testCDN+"/react-dom/client")
	assert.Empty(t, res.CSS)
}

func TestCompile_ExtensionlessAndIndexImports(t *testing.T) {
	c := newTestCompiler()

	res, err := c.Compile(context.Background(), Request{Files: map[string]string{
		"App.tsx":         `import { a } from "./lib"; import { b } from "./util/helpers"; console.log(a, b);`,
		"lib/index.ts":    `export const a = "from-index";`,
		"util/helpers.js": `export const b = "from-helpers";`,
	}})
	require.NoError(t, err)
	assert.Contains(t, res.JS, "from-index")
	assert.Contains(t, res.JS, "from-helpers")
}

func TestCompile_RejectsDisallowedImports(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"package outside allowlist", `import _ from "lodash"; console.log(_);`, "allowlist"},
		{"node builtin", `import fs from "node:fs"; console.log(fs);`, "not allowed"},
		{"remote URL", `import x from "https://evil.example/x.js"; console.log(x);`, "not allowed"},
		{"absolute path", `import x from "/etc/passwd"; console.log(x);`, "absolute"},
		{"escapes root", `import x from "../outside"; console.log(x);`, "escapes"},
		{"deep escape", `import x from "./a/../../outside"; console.log(x);`, "escapes"},
		{"missing file", `import x from "./nope"; console.log(x);`, "cannot resolve"},
	}

	c := newTestCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(context.Background(), Request{
				Files: map[string]string{"App.tsx": tt.source},
			})
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrInvalidInput))
			assert.Contains(t, compileErrorText(t, err), tt.want)
		})
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	c := newTestCompiler()

	_, err := c.Compile(context.Background(), Request{Files: map[string]string{
		"App.tsx": `export default function App( { return <div>; }`,
	}})
	require.Error(t, err)
	assert.NotEmpty(t, compileErrorText(t, err))
}

func TestCompile_InvalidInput(t *testing.T) {
	c := NewCompiler(Options{CDNBase: testCDN, MaxFiles: 2, MaxBytes: 64}, metrics.NewNoopMetrics())

	tests := []struct {
		name  string
		req   Request
		cause error
	}{
		{"no files", Request{}, ErrInvalidPath},
		{
			"too many files",
			Request{Files: map[string]string{"a.ts": "", "b.ts": "", "App.tsx": ""}},
			ErrTooManyFiles,
		},
		{
			"too large",
			Request{Files: map[string]string{"App.tsx": strings.Repeat("x", 65)}},
			ErrTooLarge,
		},
		{"absolute path", Request{Files: map[string]string{"/App.tsx": ""}}, ErrInvalidPath},
		{"parent path", Request{Files: map[string]string{"../App.tsx": ""}}, ErrInvalidPath},
		{"backslash", Request{Files: map[string]string{`src\App.tsx`: ""}}, ErrInvalidPath},
		{"bad extension", Request{Files: map[string]string{"App.exe": ""}}, ErrInvalidPath},
		{
			"duplicate after cleaning",
			Request{Files: map[string]string{"App.tsx": "", "./App.tsx": ""}},
			ErrInvalidPath,
		},
		{"missing entry", Request{Files: map[string]string{"Other.tsx": ""}}, ErrEntryNotFound},
		{
			"entry escapes root",
			Request{Entry: "../App.tsx", Files: map[string]string{"App.tsx": ""}},
			ErrInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestCompile_CanceledContext(t *testing.T) {
	c := newTestCompiler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compile(ctx, Request{Files: map[string]string{"App.tsx": "export {}"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompile_RecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockRecorder(ctrl)

	gomock.InOrder(
		m.EXPECT().RecordPreviewCompile(true, gomock.Any()),
		m.EXPECT().RecordPreviewCompile(false, gomock.Any()),
	)

	c := NewCompiler(Options{CDNBase: testCDN, MaxFiles: 8, MaxBytes: 4096}, m)
	ctx := context.Background()

	_, err := c.Compile(ctx, Request{Files: map[string]string{"App.tsx": `export const x = 1;`}})
	require.NoError(t, err)

	_, err = c.Compile(ctx, Request{Files: map[string]string{"App.tsx": `import "left-pad";`}})
	require.Error(t, err)

	// rejected before bundling, so nothing is recorded
	_, err = c.Compile(ctx, Request{Files: map[string]string{"App.rb": ""}})
	require.Error(t, err)
}

func TestCleanPath(t *testing.T) {
	for in, want := range map[string]string{
		"App.tsx":              "App.tsx",
		"./App.tsx":            "App.tsx",
		"src/../App.tsx":       "App.tsx",
		"src//components/a.ts": "src/components/a.ts",
	} {
		got, err := cleanPath(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", ".", "..", "/x.ts", "a/../../x.ts", "c:x.ts", "file:x.ts"} {
		_, err := cleanPath(in)
		assert.ErrorIs(t, err, ErrInvalidPath, fmt.Sprintf("%q", in))
	}
}
