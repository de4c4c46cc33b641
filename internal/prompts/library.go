// Package prompts loads the static prompt templates: the companion persona,
// the summarizer instructions and the four safety redirect messages. The
// templates are data, not logic; which one fires is decided elsewhere.
package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"life-story-companion/internal/domain/model"
)

//go:embed templates
var templatesFS embed.FS

// Library holds all prompt templates, keyed by file (without extension) and
// top-level YAML key. Read-only after construction.
type Library struct {
	files map[string]map[string]string
}

// NewLibrary parses every YAML file in the provided filesystem's templates
// directory. Pass DefaultFS for the embedded set.
func NewLibrary(fsys fs.FS) (*Library, error) {
	entries, err := fs.ReadDir(fsys, "templates")
	if err != nil {
		return nil, fmt.Errorf("read templates dir: %w", err)
	}

	files := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join("templates", name))
		if err != nil {
			return nil, fmt.Errorf("read template file %s: %w", name, err)
		}
		var keys map[string]string
		if err := yaml.Unmarshal(data, &keys); err != nil {
			return nil, fmt.Errorf("parse template file %s: %w", name, err)
		}
		files[strings.TrimSuffix(name, ".yaml")] = keys
	}
	return &Library{files: files}, nil
}

// DefaultFS returns the embedded template set.
func DefaultFS() fs.FS { return templatesFS }

// Get returns the raw template under file/key, trimmed.
func (l *Library) Get(file, key string) (string, error) {
	keys, ok := l.files[file]
	if !ok {
		return "", fmt.Errorf("unknown prompt file %q", file)
	}
	tpl, ok := keys[key]
	if !ok {
		return "", fmt.Errorf("unknown prompt key %q in %q", key, file)
	}
	return strings.TrimSpace(tpl), nil
}

// Render returns the template with {name} placeholders substituted.
func (l *Library) Render(file, key string, vars map[string]string) (string, error) {
	tpl, err := l.Get(file, key)
	if err != nil {
		return "", err
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(tpl)), nil
}

// SafetyResponse maps a category to its fixed redirect text. The switch is
// exhaustive over model.SafetyCategory; a new category must get a template
// here and in safety.yaml before it can compile into the classifier.
func (l *Library) SafetyResponse(category model.SafetyCategory) (string, error) {
	var key string
	switch category {
	case model.CategoryMedical:
		key = "medical"
	case model.CategoryLegal:
		key = "legal"
	case model.CategoryCrisis:
		key = "crisis"
	case model.CategoryInappropriate:
		key = "inappropriate"
	default:
		return "", fmt.Errorf("no safety template for category %q", category)
	}
	return l.Get("safety", key)
}
