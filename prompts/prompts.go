// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/usecasegen/core"
)

//go:embed templates.yaml
var catalogueYAML []byte

// Name identifies a pipeline prompt.
type Name string

const (
	Classify       Name = "classify"
	Summarize      Name = "summarize"
	Generate       Name = "generate"
	DesignDocument Name = "design_document"
)

// Input is the union of fields any pipeline prompt renders.
// Fields a template does not reference are ignored.
type Input struct {
	Text          string
	Category      string
	CloudProvider string
	Guidance      string
	LevelRubric   string
	RiskGuidance  string

	// MethodologyTypesJSON and MetricsJSON carry the master catalogue.
	// Empty means no catalogue section is rendered.
	MethodologyTypesJSON string
	MetricsJSON          string
}

// Prompt is a rendered system and user message pair.
type Prompt struct {
	Name   Name
	System string
	User   string
}

// CategoryPrompt is the category-specific system prompt and guidance.
type CategoryPrompt struct {
	System   string `yaml:"system"`
	Guidance string `yaml:"guidance"`
}

type templateSpec struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type catalogue struct {
	Rubrics struct {
		LevelFinding string `yaml:"level_finding"`
		RiskGuidance string `yaml:"risk_guidance"`
	} `yaml:"rubrics"`
	Categories map[string]CategoryPrompt `yaml:"categories"`
	Prompts    map[Name]templateSpec      `yaml:"prompts"`
	Agents     struct {
		Preamble string            `yaml:"preamble"`
		Roles    map[string]string `yaml:"roles"`
		Footer   string            `yaml:"footer"`
	} `yaml:"agents"`
}

type compiled struct {
	system *template.Template
	user   *template.Template
}

// Library holds the parsed and compiled prompt catalogue.
// It is immutable after construction and safe for concurrent use.
type Library struct {
	cat       catalogue
	templates map[Name]compiled
	agent     *template.Template
}

// Parse builds a Library from YAML catalogue source.
func Parse(src []byte) (*Library, error) {
	var cat catalogue
	if err := yaml.Unmarshal(src, &cat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogue, err)
	}

	lib := &Library{cat: cat, templates: make(map[Name]compiled, len(cat.Prompts))}
	for _, name := range []Name{Classify, Summarize, Generate, DesignDocument} {
		entry, ok := cat.Prompts[name]
		if !ok || strings.TrimSpace(entry.User) == "" {
			return nil, fmt.Errorf("%w: prompt %s missing user template", ErrCatalogue, name)
		}
		sys, err := parseTemplate(string(name)+".system", entry.System)
		if err != nil {
			return nil, err
		}
		usr, err := parseTemplate(string(name)+".user", entry.User)
		if err != nil {
			return nil, err
		}
		lib.templates[name] = compiled{system: sys, user: usr}
	}

	if _, ok := cat.Categories[fallbackCategory]; !ok {
		return nil, fmt.Errorf("%w: missing %s category prompt", ErrCatalogue, fallbackCategory)
	}

	for _, r := range Roles {
		if strings.TrimSpace(cat.Agents.Roles[r.key()]) == "" {
			return nil, fmt.Errorf("%w: missing instruction for role %s", ErrCatalogue, r)
		}
	}
	agent, err := parseTemplate("agent", cat.Agents.Preamble+"\n{{.Role}}\n"+cat.Agents.Footer)
	if err != nil {
		return nil, err
	}
	lib.agent = agent

	return lib, nil
}

func parseTemplate(name, src string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogue, name, err)
	}
	return t, nil
}

var loadDefault = sync.OnceValues(func() (*Library, error) {
	return Parse(catalogueYAML)
})

// Default returns the Library compiled from the embedded catalogue.
func Default() (*Library, error) {
	return loadDefault()
}

// Build renders the named prompt against in.
func (l *Library) Build(name Name, in Input) (Prompt, error) {
	t, ok := l.templates[name]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
	}

	sys, err := render(t.system, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("render %s: %w", name, err)
	}
	usr, err := render(t.user, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Prompt{Name: name, System: sys, User: usr}, nil
}

func render(t *template.Template, data any) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

const fallbackCategory = "fallback"

// ForCategory returns the system prompt and methodology guidance for c,
// or the generic fallback when the catalogue has no entry for it.
func (l *Library) ForCategory(c core.Category) CategoryPrompt {
	if p, ok := l.cat.Categories[c.String()]; ok {
		return p
	}
	return l.cat.Categories[fallbackCategory]
}

// LevelRubric returns the AI maturity level guidance (levels 0-6).
func (l *Library) LevelRubric() string {
	return strings.TrimSpace(l.cat.Rubrics.LevelFinding)
}

// RiskGuidance returns the document risk assessment criteria.
func (l *Library) RiskGuidance() string {
	return strings.TrimSpace(l.cat.Rubrics.RiskGuidance)
}
