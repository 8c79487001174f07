package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ashutoshrp06/sitesmith/internal/normalize"
	"github.com/ashutoshrp06/sitesmith/internal/types"
)

// Preset names.
const (
	PresetBuilder  = "builder"
	PresetFrontend = "frontend"
	PresetChat     = "chat"
)

// Preset pairs a system instruction template with the tools it expects.
type Preset struct {
	Name        string
	Description string
	Tools       []types.ToolName
	template    string
}

// Instruction renders the preset for a platform.
func (p Preset) Instruction(platform normalize.Platform) string {
	if p.template == "" {
		return ""
	}
	prompt := p.template
	prompt = strings.ReplaceAll(prompt, "{{PLATFORM}}", string(platform))
	prompt = strings.ReplaceAll(prompt, "{{PLATFORM_LABEL}}", platform.Label())
	prompt = strings.ReplaceAll(prompt, "{{SHELL_RULES}}", shellRules(platform))
	return prompt
}

var presets = map[string]Preset{
	PresetBuilder: {
		Name:        PresetBuilder,
		Description: "Website builder that writes files directly",
		Tools:       []types.ToolName{types.ToolExecuteCommand, types.ToolWriteFileContent},
		template:    builderTemplate,
	},
	PresetFrontend: {
		Name:        PresetFrontend,
		Description: "Frontend developer that works only through shell commands",
		Tools:       []types.ToolName{types.ToolExecuteCommand},
		template:    frontendTemplate,
	},
	PresetChat: {
		Name:        PresetChat,
		Description: "Plain conversation without tools",
	},
}

// LookupPreset returns the named preset.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames lists the preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func shellRules(platform normalize.Platform) string {
	if platform == normalize.Windows {
		return `- Commands run in Windows PowerShell.
- touch, mkdir, "echo ... > file" and "cat a > b" are translated to PowerShell for you.
- Use forward slashes or double backslashes in paths.`
	}
	return `- Commands run in bash.
- Use forward slashes in paths.`
}

const builderTemplate = `You are a professional website builder assistant. Your task is to help users create complete website projects by generating the necessary files and code.

Current OS: {{PLATFORM}} ({{PLATFORM_LABEL}})

Important Guidelines:
{{SHELL_RULES}}
- For writing file content, prefer the writeFileContent tool over echo commands.
- Create these standard files for each project:
  - index.html (main HTML file)
  - style.css (styles)
  - script.js (JavaScript)

Project Structure Example:
1. Create project folder: mkdir my-project
2. Create files inside it
3. Write proper starter code to each file
4. Provide clear instructions to the user

For HTML content, include proper doctype, meta tags, and semantic structure.
For CSS, include basic reset styles and responsive design considerations.
For JavaScript, include a DOMContentLoaded event listener.`

const frontendTemplate = `You are an expert AI agent specializing in automated frontend web development. Your goal is to build complete, functional frontend websites by executing terminal commands.

Operating System: {{PLATFORM}} ({{PLATFORM_LABEL}})

Workflow:
1. FIRST create the project directory.
2. THEN create files (index.html, style.css, script.js) one at a time.
3. Write file contents with a single command per file.
{{SHELL_RULES}}

On Windows write multi-line files with a here-string:
@"
<!DOCTYPE html>
<html>
<body><h1>Hello World</h1></body>
</html>
"@ | Out-File -Encoding utf8 "project\index.html"

On Mac/Linux use a heredoc:
cat << 'EOF' > project/index.html
<!DOCTYPE html>
<html>
<body><h1>Hello World</h1></body>
</html>
EOF

Validation: after each file operation list the directory, and read the file back after writing it. Proceed only after it checks out.

When complete, report:
1. Project location
2. Files created
3. How to open the website`
