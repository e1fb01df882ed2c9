// Package rules implements the static, ordered intent matcher that backs the
// classifier. The table is data: a YAML document validated against a JSON
// schema and compiled once at startup.
package rules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/beyondtyping/beyond/internal/beyond/slots"
)

//go:embed default_rules.yaml
var defaultRules []byte

//go:embed rules.schema.json
var schemaJSON []byte

const schemaURL = "rules.schema.json"

// Rule recognizes one intent. Patterns are tried in order.
type Rule struct {
	Intent   string
	Patterns []*regexp.Regexp
	// Slots maps a slot name to the capture group that supplies it.
	Slots map[string]int
}

// Match is the outcome of running the table over an utterance.
type Match struct {
	// Resolved is false when no pattern in the table matched.
	Resolved bool
	Intent   string
	// Slots holds raw captured values; fillers have not been stripped.
	Slots slots.Set
	// RuleIndex is the position of the winning rule in declaration order.
	RuleIndex int
	// Pattern is the source of the winning pattern.
	Pattern string
}

// Matcher is an immutable, ordered rule table.
type Matcher struct {
	rules []Rule
}

type fileDoc struct {
	Version int        `yaml:"version"`
	Rules   []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Intent      string         `yaml:"intent"`
	Description string         `yaml:"description"`
	Patterns    []string       `yaml:"patterns"`
	Slots       map[string]int `yaml:"slots"`
}

// Default compiles the embedded rule table.
func Default() (*Matcher, error) {
	return Load(defaultRules)
}

// MustDefault is Default for callers that treat a broken embedded table as
// a programming error.
func MustDefault() *Matcher {
	m, err := Default()
	if err != nil {
		panic(fmt.Sprintf("rules: embedded table: %v", err))
	}
	return m
}

// LoadFile compiles a rule table from a YAML file on disk.
func LoadFile(path string) (*Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	m, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Load validates data against the rule schema and compiles every pattern.
func Load(data []byte) (*Matcher, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	m := &Matcher{rules: make([]Rule, 0, len(doc.Rules))}
	for i, spec := range doc.Rules {
		rule := Rule{Intent: spec.Intent, Slots: spec.Slots}
		for _, src := range spec.Patterns {
			re, err := regexp.Compile(src)
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): invalid pattern %q: %w", i, spec.Intent, src, err)
			}
			for name, group := range spec.Slots {
				if group > re.NumSubexp() {
					return nil, fmt.Errorf("rule %d (%s): slot %q refers to group %d but pattern %q has %d",
						i, spec.Intent, name, group, src, re.NumSubexp())
				}
			}
			rule.Patterns = append(rule.Patterns, re)
		}
		m.rules = append(m.rules, rule)
	}
	return m, nil
}

func validate(data []byte) error {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse rules: %w", err)
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("rules are not representable as JSON: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(asJSON))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode rules: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("failed to load rules schema: %w", err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("failed to compile rules schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	return nil
}

// Match runs the table over the normalized text. The first pattern, in
// declaration order across the whole table, that matches anywhere in text
// decides the intent; nothing after it is evaluated.
func (m *Matcher) Match(text string) Match {
	for i, rule := range m.rules {
		for _, re := range rule.Patterns {
			groups := re.FindStringSubmatch(text)
			if groups == nil {
				continue
			}
			captured := slots.Set{}
			for name, idx := range rule.Slots {
				if idx < len(groups) && groups[idx] != "" {
					captured[name] = groups[idx]
				}
			}
			return Match{
				Resolved:  true,
				Intent:    rule.Intent,
				Slots:     captured,
				RuleIndex: i,
				Pattern:   re.String(),
			}
		}
	}
	return Match{RuleIndex: -1}
}

// Rules returns the compiled table in declaration order.
func (m *Matcher) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Intents lists the distinct intents the table can produce, in first
// declaration order.
func (m *Matcher) Intents() []string {
	seen := make(map[string]bool, len(m.rules))
	var out []string
	for _, r := range m.rules {
		if !seen[r.Intent] {
			seen[r.Intent] = true
			out = append(out, r.Intent)
		}
	}
	return out
}
