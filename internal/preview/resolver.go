package preview

import (
	"fmt"
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

const virtualNamespace = "preview-virtual"

// allowedPackages are the only bare imports a preview may use. They are
// served from the ESM CDN, never bundled.
var allowedPackages = map[string]bool{
	"react":                 true,
	"react-dom":             true,
	"react-dom/client":      true,
	"react/jsx-runtime":     true,
	"react/jsx-dev-runtime": true,
}

var resolveExtensions = []string{".tsx", ".ts", ".jsx", ".js", ".css", ".json"}

var loaders = map[string]api.Loader{
	".tsx":  api.LoaderTSX,
	".ts":   api.LoaderTS,
	".jsx":  api.LoaderJSX,
	".js":   api.LoaderJS,
	".css":  api.LoaderCSS,
	".json": api.LoaderJSON,
}

// virtualFS is the set of sources a single build may see.
type virtualFS map[string]string

// lookup finds importPath as given, with an added extension, or as a directory
// index.
func (fs virtualFS) lookup(p string) (string, bool) {
	if _, ok := fs[p]; ok {
		return p, true
	}
	for _, ext := range resolveExtensions {
		if _, ok := fs[p+ext]; ok {
			return p + ext, true
		}
	}
	for _, ext := range resolveExtensions {
		candidate := path.Join(p, "index"+ext)
		if _, ok := fs[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func isRelative(importPath string) bool {
	return importPath == "." || importPath == ".." ||
		strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../")
}

func hasScheme(importPath string) bool {
	i := strings.Index(importPath, ":")
	return i > 0 && !strings.ContainsAny(importPath[:i], "/.")
}

// escapesRoot reports whether a cleaned virtual path points above the root.
func escapesRoot(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/")
}

// resolverPlugin confines every import to the virtual file map or the
// package allowlist. Nothing touches the disk or the network at build time.
func resolverPlugin(fs virtualFS, cdnBase string) api.Plugin {
	return api.Plugin{
		Name: "preview-resolver",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: ".*"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return resolve(fs, cdnBase, args)
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: virtualNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					contents, ok := fs[args.Path]
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("file not found: %s", args.Path)
					}
					return api.OnLoadResult{
						Contents: &contents,
						Loader:   loaders[path.Ext(args.Path)],
					}, nil
				})
		},
	}
}

func resolve(fs virtualFS, cdnBase string, args api.OnResolveArgs) (api.OnResolveResult, error) {
	importPath := args.Path

	if args.Kind == api.ResolveEntryPoint {
		if p, ok := fs.lookup(importPath); ok {
			return api.OnResolveResult{Path: p, Namespace: virtualNamespace}, nil
		}
		return api.OnResolveResult{}, fmt.Errorf("entry not found: %s", importPath)
	}

	switch {
	case strings.HasPrefix(importPath, "/"):
		return api.OnResolveResult{}, fmt.Errorf("absolute imports are not allowed: %s", importPath)
	case hasScheme(importPath):
		return api.OnResolveResult{}, fmt.Errorf("URL and node: imports are not allowed: %s", importPath)
	case isRelative(importPath):
		dir := "."
		if args.Namespace == virtualNamespace {
			dir = path.Dir(args.Importer)
		}
		target := path.Clean(path.Join(dir, importPath))
		if escapesRoot(target) {
			return api.OnResolveResult{}, fmt.Errorf("import escapes the project root: %s", importPath)
		}
		p, ok := fs.lookup(target)
		if !ok {
			return api.OnResolveResult{}, fmt.Errorf("cannot resolve %q from %s", importPath, args.Importer)
		}
		return api.OnResolveResult{Path: p, Namespace: virtualNamespace}, nil
	case allowedPackages[importPath]:
		return api.OnResolveResult{Path: cdnBase + "/" + importPath, External: true}, nil
	default:
		return api.OnResolveResult{}, fmt.Errorf("package %q is not in the allowlist", importPath)
	}
}
