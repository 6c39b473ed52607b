package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Overridable at build time via -ldflags "-X jsema/internal/version.Version=...".
var (
	Version   = "0.3.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var (
	nameColor    = color.New(color.FgCyan, color.Bold)
	versionColor = color.New(color.FgGreen, color.Bold)
	faintColor   = color.New(color.Faint)
)

// Banner is the one-line description printed by `jsema version`.
// Colours follow color.NoColor, which the CLI sets from the terminal check.
func Banner() string {
	var sb strings.Builder
	sb.WriteString(nameColor.Sprint("jsema"))
	sb.WriteByte(' ')
	sb.WriteString(versionColor.Sprint(Version))
	var extra []string
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		extra = append(extra, "commit "+commit)
	}
	if BuildDate != "" {
		extra = append(extra, "built "+BuildDate)
	}
	if len(extra) > 0 {
		sb.WriteString(faintColor.Sprint(fmt.Sprintf(" (%s)", strings.Join(extra, ", "))))
	}
	return sb.String()
}
