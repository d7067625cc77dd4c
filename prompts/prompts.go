// Package prompts loads the session prompt templates and copies spec
// files into the project directory before the first session.
//
// Built-in templates are embedded; a prompts directory can override them
// and is also the source of the per-project app_spec.txt.
package prompts

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed templates/*.md
var templates embed.FS

// Template names, loaded as <name>.md.
const (
	InitializerName = "initializer_prompt"
	CodingName      = "coding_prompt"
)

// Spec files copied into the project directory for the agent to read.
const (
	SpecFileName    = "app_spec.txt"
	DetailsFileName = "app_details.md" // optional
)

// Loader resolves prompt templates. When Dir is set, files there take
// precedence over the embedded defaults.
type Loader struct {
	Dir string
}

// Load returns the template with the given name.
func (l Loader) Load(name string) (string, error) {
	if l.Dir != "" {
		path := filepath.Join(l.Dir, name+".md")
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("read prompt %s: %w", path, err)
		}
	}

	data, err := templates.ReadFile("templates/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("no prompt template %q: %w", name, err)
	}
	return string(data), nil
}

// Initializer returns the initializer session prompt.
func (l Loader) Initializer() (string, error) {
	return l.Load(InitializerName)
}

// Coding returns the coding session prompt.
func (l Loader) Coding() (string, error) {
	return l.Load(CodingName)
}

// CopySpec copies app_spec.txt and the optional app_details.md from the
// prompts directory into the project directory, skipping files that are
// already present so an agent-edited copy is never clobbered. Returns
// the names of the files actually copied.
func (l Loader) CopySpec(projectDir string) ([]string, error) {
	if l.Dir == "" {
		return nil, nil
	}

	var copied []string
	for _, name := range []string{SpecFileName, DetailsFileName} {
		src := filepath.Join(l.Dir, name)
		dst := filepath.Join(projectDir, name)

		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if _, err := os.Stat(dst); err == nil {
			continue
		}

		data, err := os.ReadFile(src)
		if err != nil {
			return copied, fmt.Errorf("read spec file %s: %w", src, err)
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return copied, fmt.Errorf("copy spec file to %s: %w", dst, err)
		}
		copied = append(copied, name)
	}
	return copied, nil
}
