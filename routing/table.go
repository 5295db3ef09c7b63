package routing

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ruleSpec is the on-disk shape of one Tier A keyword/pattern table, editable
// without recompiling.
type ruleSpec struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Patterns []string `yaml:"patterns"`
}

// Table holds the compiled Tier A rule data: keyword sets and regexes for
// recency, social, calculation, coding, and the per-tool keyword tables,
// plus the closed sets (technical terms, historical-time modifiers) the
// special-cased steps in tierA.go consult.
type Table struct {
	Recency        ruleMatcher
	Social         ruleMatcher
	TechnicalTerms map[string]bool
	Calculation    ruleMatcher
	Coding         ruleMatcher
	Weather        ruleMatcher
	News           ruleMatcher
	Search         ruleMatcher
	Time           ruleMatcher
	Command        ruleMatcher
	CommandVersion ruleMatcher
	CommandTargets map[string]bool
	HistoricalTime ruleMatcher
}

// hasCommandTarget reports whether lower names a CLI/runtime the
// version-check command rule recognizes. The version rule fires only when
// both a version keyword and a known target are present, so "check this
// essay" never becomes a shell command.
func (t *Table) hasCommandTarget(lower string) bool {
	for target := range t.CommandTargets {
		if containsWord(lower, target) {
			return true
		}
	}
	return false
}

type ruleMatcher struct {
	keywords []string
	patterns []*regexp.Regexp
}

func (m ruleMatcher) matches(lower string) bool {
	for _, kw := range m.keywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	for _, re := range m.patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func compile(spec ruleSpec) (ruleMatcher, error) {
	m := ruleMatcher{keywords: spec.Keywords}
	for _, p := range spec.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return ruleMatcher{}, fmt.Errorf("routing: compiling pattern %q for rule %q: %w", p, spec.Name, err)
		}
		m.patterns = append(m.patterns, re)
	}
	return m, nil
}

// fileShape mirrors the YAML document: a flat list of named rule specs plus
// a technical-terms closed set for the concept-query tier.
type fileShape struct {
	Rules          []ruleSpec `yaml:"rules"`
	TechnicalTerms []string   `yaml:"technical_terms"`
	CommandTargets []string   `yaml:"command_targets"`
}

// LoadTable parses a rule table from YAML bytes.
func LoadTable(data []byte) (*Table, error) {
	var doc fileShape
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("routing: parsing rule table: %w", err)
	}

	byName := make(map[string]ruleSpec, len(doc.Rules))
	for _, r := range doc.Rules {
		byName[r.Name] = r
	}

	t := &Table{
		TechnicalTerms: make(map[string]bool, len(doc.TechnicalTerms)),
		CommandTargets: make(map[string]bool, len(doc.CommandTargets)),
	}
	for _, term := range doc.TechnicalTerms {
		t.TechnicalTerms[term] = true
	}
	for _, target := range doc.CommandTargets {
		t.CommandTargets[target] = true
	}

	assign := func(name string, dst *ruleMatcher) error {
		spec, ok := byName[name]
		if !ok {
			return nil
		}
		m, err := compile(spec)
		if err != nil {
			return err
		}
		*dst = m
		return nil
	}

	for name, dst := range map[string]*ruleMatcher{
		"recency":         &t.Recency,
		"social":          &t.Social,
		"calculation":     &t.Calculation,
		"coding":          &t.Coding,
		"weather":         &t.Weather,
		"news":            &t.News,
		"search":          &t.Search,
		"time":            &t.Time,
		"command":         &t.Command,
		"command_version": &t.CommandVersion,
		"historical_time": &t.HistoricalTime,
	} {
		if err := assign(name, dst); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// LoadTableFile reads a rule table from a YAML file on disk.
func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routing: reading rule table %s: %w", path, err)
	}
	return LoadTable(data)
}

// DefaultTable returns the built-in Tier A rule set, parsed through the
// same YAML path LoadTableFile uses so the embedded defaults and an
// operator-supplied override file are indistinguishable to the rest of the
// router.
func DefaultTable() *Table {
	t, err := LoadTable([]byte(defaultRulesYAML))
	if err != nil {
		panic("routing: embedded default rule table failed to parse: " + err.Error())
	}
	return t
}

const defaultRulesYAML = `
rules:
  - name: recency
    keywords: ["latest", "recent", "recently", "current", "currently", "this year", "up to date", "up-to-date"]
    patterns:
      - '\b20(2[3-9]|3[0-9])\b'
      - '\bgpt-?[0-9]'
      - '\bclaude-?[0-9]'
      - '\bgemini-?[0-9]'
  - name: social
    keywords: ["hello", "hi", "hey", "thanks", "thank you", "summarize", "translate", "explain", "good morning", "good evening"]
  - name: calculation
    keywords: ["calculate", "compute", "evaluate"]
    patterns:
      - '[0-9]+\s*[\+\-\*/\^%]\s*[0-9]+'
  - name: coding
    keywords: ["function", "algorithm", "recursion", "big o", "time complexity", "sort algorithm", "data structure", "binary search", "quicksort", "merge sort"]
  - name: weather
    keywords: ["weather", "temperature", "forecast", "humidity", "rain", "snow", "sunny", "cloudy"]
  - name: news
    keywords: ["news", "headline", "breaking"]
  - name: search
    keywords: ["search for", "look up", "find information", "google"]
  - name: time
    keywords: ["what time", "current time", "what's the date", "what day is it"]
  - name: command
    keywords: ["run command", "execute command", "shell command", "list files", "disk usage"]
  - name: command_version
    keywords: ["version", "installed", "status"]
  - name: historical_time
    keywords: ["yesterday", "last week", "last month", "last year", "historical", "in 2020", "in 2021", "in 2022"]

technical_terms:
  - kubernetes
  - docker
  - golang
  - tensorflow
  - pytorch
  - transformer
  - llm
  - blockchain
  - quantum computing
  - graphql
  - uv
  - npm
  - pip
  - git
  - rust
  - cargo
  - langchain
  - react
  - vue
  - angular

command_targets:
  - python
  - python3
  - uv
  - pip
  - node
  - npm
  - git
  - docker
  - go
  - rust
  - cargo
  - system
  - os
`
