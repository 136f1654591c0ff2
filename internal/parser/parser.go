// Package parser reads note metadata out of Markdown files with YAML
// frontmatter.
package parser

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// timeLayouts are tried in order for quoted frontmatter timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Result holds the note fields found in one Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	ID          string
	Tags        []string
	Created     time.Time
	Modified    time.Time
}

// Parse splits frontmatter from body and extracts id, tags and timestamps.
// Missing fields are left zero; the caller decides the fallback.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	return &Result{
		Frontmatter: fm,
		Body:        body,
		ID:          stringField(fm, "id"),
		Tags:        extractTags(body, fm),
		Created:     timeField(fm, "created"),
		Modified:    timeField(fm, "modified"),
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	block := rest[:idx]
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(block, &fm); err != nil {
		// Unparseable frontmatter is treated as content.
		return nil, string(data), nil
	}
	return fm, body, nil
}

// extractTags collects frontmatter tags (a list or a comma separated string)
// followed by inline #tags from the body, without duplicates.
func extractTags(body string, fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	switch v := fm["tags"].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	}

	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

func stringField(fm map[string]interface{}, key string) string {
	switch v := fm[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// timeField accepts both native YAML timestamps and quoted strings.
func timeField(fm map[string]interface{}, key string) time.Time {
	switch v := fm[key].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
