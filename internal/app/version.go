package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Build metadata, overridden with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// HasVersionFlag reports whether args request the version banner.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--version", "-version", "-V":
			return true
		case "--":
			return false
		}
	}
	return false
}

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	version, commit := Version, Commit
	if info, ok := debug.ReadBuildInfo(); ok {
		if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		if commit == "" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
				}
			}
		}
	}
	fmt.Fprintf(out, "argontune %s", version)
	if commit != "" {
		fmt.Fprintf(out, " (%s)", commit)
	}
	if BuildDate != "" {
		fmt.Fprintf(out, " built %s", BuildDate)
	}
	fmt.Fprintf(out, " %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
