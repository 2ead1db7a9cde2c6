package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nishantmodak/ghost-admin/internal/content"
)

// Rules is a batch of edits read from a YAML file:
//
//	dry_run: true
//	links:
//	  - pattern: old-domain.com
//	    replacement: new-domain.com
//	    preserve_path: true
//	    post_ids: [abc123]
//	alt_text:
//	  - post_id: abc123
//	    src: /content/images/cat.png
//	    alt: A cat asleep on a keyboard
type Rules struct {
	DryRun  bool                       `yaml:"dry_run"`
	Links   []LinkRule                 `yaml:"links"`
	AltText []content.AltUpdateRequest `yaml:"alt_text"`
}

// LinkRule is one link replacement, optionally limited to some posts.
// preserve_path defaults to true.
type LinkRule struct {
	content.LinkReplacementSpec `yaml:",inline"`
	PostIDs                     []string `yaml:"post_ids"`
}

func (l *LinkRule) UnmarshalYAML(value *yaml.Node) error {
	type plain LinkRule
	r := plain{LinkReplacementSpec: content.LinkReplacementSpec{PreservePath: true}}
	if err := value.Decode(&r); err != nil {
		return err
	}
	*l = LinkRule(r)
	return nil
}

// LoadRules reads and validates a rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &r, nil
}

func (r *Rules) Validate() error {
	if len(r.Links) == 0 && len(r.AltText) == 0 {
		return fmt.Errorf("no links or alt_text rules")
	}
	for i, l := range r.Links {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("links[%d]: %w", i, err)
		}
	}
	for i, a := range r.AltText {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("alt_text[%d]: %w", i, err)
		}
	}
	return nil
}
