package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashutoshrp06/sitesmith/internal/llm"
	"github.com/ashutoshrp06/sitesmith/internal/ui"
)

// Set with -ldflags "-X main.Version=...". Commit and date fall back to the
// VCS stamp the Go toolchain embeds.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := currentBuild()
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), info.version)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), renderVersion(info))
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}

type buildInfo struct {
	version string
	commit  string
	date    string
	dirty   bool
	goVer   string
}

func currentBuild() buildInfo {
	info := buildInfo{
		version: Version,
		commit:  GitCommit,
		date:    BuildDate,
		goVer:   runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = withVCS(info, bi.Settings)
	}
	return info
}

// withVCS fills what ldflags left empty from the embedded VCS settings.
func withVCS(info buildInfo, settings []debug.BuildSetting) buildInfo {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.commit == "" {
				info.commit = s.Value
			}
		case "vcs.time":
			if info.date == "" {
				info.date = s.Value
			}
		case "vcs.modified":
			info.dirty = s.Value == "true"
		}
	}
	if len(info.commit) > 12 {
		info.commit = info.commit[:12]
	}
	return info
}

func renderVersion(info buildInfo) string {
	styles := ui.DefaultStyles()
	orUnknown := func(s string) string {
		if s == "" {
			return "unknown"
		}
		return s
	}

	commit := orUnknown(info.commit)
	if info.dirty {
		commit += " (modified)"
	}

	rows := [][2]string{
		{"Version:", info.version},
		{"Commit:", commit},
		{"Built:", orUnknown(info.date)},
		{"Go:", info.goVer},
		{"Default model:", llm.DefaultGeminiModel},
	}

	var b strings.Builder
	b.WriteString(styles.BannerTitle.Render("sitesmith"))
	b.WriteString("\n\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", styles.HelpKey.Render(row[0]), styles.HelpValue.Render(row[1]))
	}
	return b.String()
}
