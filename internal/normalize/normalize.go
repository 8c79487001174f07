// Package normalize rewrites a small set of Unix-style file commands into
// their PowerShell equivalents so the model can issue the same commands on
// every host.
package normalize

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform is the host shell family.
type Platform string

const (
	Posix   Platform = "posix"
	Windows Platform = "windows"
)

// Current returns the platform of the running process.
func Current() Platform {
	if runtime.GOOS == "windows" {
		return Windows
	}
	return Posix
}

// ParsePlatform maps a config or OS name onto a Platform. The empty string
// resolves to Current.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Current(), nil
	case "posix", "unix", "linux", "darwin":
		return Posix, nil
	case "windows", "win32":
		return Windows, nil
	default:
		return "", fmt.Errorf("unknown platform: %q", s)
	}
}

// Label is the name shown to users and to the model.
func (p Platform) Label() string {
	if p == Windows {
		return "Windows"
	}
	return "Unix-like"
}

// Normalize returns the command rewritten for p. Commands that match no
// known pattern come back unchanged. On Windows none of the rewritten forms
// starts with a recognized verb, and on Posix the rewritten paths contain no
// backslash, so applying Normalize twice gives the same result as once.
func Normalize(command string, p Platform) string {
	if p != Windows {
		return normalizePosix(command)
	}

	cmd := strings.TrimSpace(command)
	verb, rest, _ := strings.Cut(cmd, " ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return command
	}

	switch verb {
	case "touch":
		if hasControlOperator(rest) {
			return command
		}
		return fmt.Sprintf("New-Item -Path %s -ItemType File", quotePaths(splitArgs(rest)))

	case "mkdir":
		if hasControlOperator(rest) {
			return command
		}
		args := splitArgs(rest)
		force := ""
		if len(args) > 0 && args[0] == "-p" {
			args = args[1:]
			force = " -Force"
		}
		if len(args) == 0 {
			return command
		}
		return fmt.Sprintf("New-Item -ItemType Directory -Path %s%s", quotePaths(args), force)

	case "echo":
		content, target, appendMode, ok := splitRedirect(rest)
		if !ok {
			return command
		}
		content = strings.ReplaceAll(unquote(content), `"`, "`\"")
		return fmt.Sprintf(`"%s" | Out-File -Encoding utf8%s "%s"`, content, appendFlag(appendMode), windowsPath(target))

	case "cat":
		src, target, appendMode, ok := splitRedirect(rest)
		if !ok || hasControlOperator(src) {
			return command
		}
		return fmt.Sprintf(`Get-Content "%s" | Out-File -Encoding utf8%s "%s"`, windowsPath(src), appendFlag(appendMode), windowsPath(target))
	}

	return command
}

// normalizePosix keeps the recognized verbs as they are and only turns
// backslashes in their paths into forward slashes. Echo content is left
// alone.
func normalizePosix(command string) string {
	if !strings.Contains(command, `\`) {
		return command
	}

	cmd := strings.TrimSpace(command)
	verb, rest, _ := strings.Cut(cmd, " ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return command
	}

	switch verb {
	case "touch", "mkdir":
		if hasControlOperator(rest) {
			return command
		}
		return verb + " " + Path(rest, Posix)

	case "echo":
		content, target, appendMode, ok := splitRedirect(rest)
		if !ok {
			return command
		}
		return fmt.Sprintf("echo %s %s %s", content, redirectOp(appendMode), Path(target, Posix))

	case "cat":
		src, target, appendMode, ok := splitRedirect(rest)
		if !ok || hasControlOperator(src) {
			return command
		}
		return fmt.Sprintf("cat %s %s %s", Path(src, Posix), redirectOp(appendMode), Path(target, Posix))
	}

	return command
}

func redirectOp(appendMode bool) string {
	if appendMode {
		return ">>"
	}
	return ">"
}

// splitRedirect splits "<lhs> > <path>" or "<lhs> >> <path>" on the last
// redirect operator.
func splitRedirect(s string) (lhs, target string, appendMode, ok bool) {
	if i := strings.LastIndex(s, " >> "); i >= 0 {
		lhs, target, appendMode = s[:i], s[i+4:], true
	} else if i := strings.LastIndex(s, " > "); i >= 0 {
		lhs, target = s[:i], s[i+3:]
	} else {
		return "", "", false, false
	}

	lhs = strings.TrimSpace(lhs)
	target = strings.TrimSpace(target)
	if lhs == "" || target == "" || hasControlOperator(target) {
		return "", "", false, false
	}
	return lhs, target, appendMode, true
}

func appendFlag(appendMode bool) string {
	if appendMode {
		return " -Append"
	}
	return ""
}

func hasControlOperator(s string) bool {
	return strings.ContainsAny(s, ";|&\n")
}

// splitArgs splits on whitespace, keeping quoted segments together and
// dropping the quotes.
func splitArgs(s string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args
}

func quotePaths(paths []string) string {
	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = `"` + windowsPath(p) + `"`
	}
	return strings.Join(quoted, ",")
}

func windowsPath(p string) string {
	return strings.ReplaceAll(unquote(p), "/", `\`)
}

// Path converts the separators of p to the convention of platform.
func Path(p string, platform Platform) string {
	if platform == Windows {
		return strings.ReplaceAll(p, "/", `\`)
	}
	return strings.ReplaceAll(p, `\`, "/")
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
