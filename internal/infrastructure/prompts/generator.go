package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"listing-assistant/internal/domain/entity"
)

type SystemPromptData struct {
	Profile  *entity.Profile
	Memories []string
}

type ResumePromptData struct {
	Message string
	URL     string
}

// Generator renders the embedded prompt templates. Templates are parsed once.
type Generator struct {
	system   *template.Template
	greeting *template.Template
	resume   *template.Template
}

func NewGenerator() (*Generator, error) {
	return NewGeneratorFromTemplates(SystemTemplate, GreetingTemplate, ResumeTemplate)
}

func NewGeneratorFromTemplates(system, greeting, resume string) (*Generator, error) {
	g := &Generator{}
	var err error

	if g.system, err = template.New("system").Parse(system); err != nil {
		return nil, fmt.Errorf("parse system template: %w", err)
	}
	if g.greeting, err = template.New("greeting").Parse(greeting); err != nil {
		return nil, fmt.Errorf("parse greeting template: %w", err)
	}
	if g.resume, err = template.New("resume").Parse(resume); err != nil {
		return nil, fmt.Errorf("parse resume template: %w", err)
	}
	return g, nil
}

func (g *Generator) SystemPrompt(profile entity.Profile, memories []string) (string, error) {
	data := SystemPromptData{}
	if !profile.IsEmpty() {
		data.Profile = &profile
	}
	for _, m := range memories {
		if m = strings.TrimSpace(m); m != "" {
			data.Memories = append(data.Memories, m)
		}
	}
	return execute(g.system, data)
}

func (g *Generator) GreetingPrompt(summary entity.PageSummary) (string, error) {
	return execute(g.greeting, summary)
}

func (g *Generator) ResumePrompt(message, url string) (string, error) {
	return execute(g.resume, ResumePromptData{Message: message, URL: url})
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
