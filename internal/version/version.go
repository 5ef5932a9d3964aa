package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags at build time.
var (
	App       = "PairGate"
	Version   string
	GitCommit string
	BuildTime string
)

// Info is the build metadata reported by the version command.
type Info struct {
	App       string `json:"app"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{
		App:       App,
		Version:   versionOrDev(),
		Commit:    shortCommit(),
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// PrintVersion prints the version information
func PrintVersion() {
	info := Get()
	fmt.Printf("%s version %s\n", info.App, info.Version)
	if info.Commit != "" {
		fmt.Printf("Git commit: %s\n", info.Commit)
	}
	if info.BuildTime != "" {
		fmt.Printf("Build time: %s\n", info.BuildTime)
	}
	fmt.Printf("Go version: %s\n", info.GoVersion)
	fmt.Printf("Built for: %s\n", info.Platform)
}

func shortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

func versionOrDev() string {
	if Version != "" {
		return Version
	}
	return "dev"
}
