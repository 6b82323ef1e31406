package llm

import (
	"encoding/json"
	"strings"
)

// maxRelationshipWords bounds each connection's relationship explanation.
const maxRelationshipWords = 10

// Connection links a capture to a previously stored section.
type Connection struct {
	Target       string `json:"target_section_title"`
	Relationship string `json:"relationship"`
}

// Result is the validated outcome of a structuring call. Fallback is true
// when the collaborator was unreachable or returned unusable output and the
// deterministic local title was substituted. Raw model output never crosses
// this boundary.
type Result struct {
	Title       string       `json:"title"`
	Connections []Connection `json:"connections"`
	Fallback    bool         `json:"fallback"`
}

// rawResult tolerates the field spellings the model is known to produce.
type rawResult struct {
	SectionTitle string          `json:"sectionTitle"`
	Title        string          `json:"title"`
	Connections  []rawConnection `json:"connections"`
	LinkedNotes  []rawConnection `json:"linkedNotes"`
}

type rawConnection struct {
	TargetSectionTitle      string `json:"targetSectionTitle"`
	Target                  string `json:"target"`
	RelationshipExplanation string `json:"relationshipExplanation"`
	Relationship            string `json:"relationship"`
}

// parseResult validates model output into a tagged Result. It returns false
// when no usable title can be extracted.
func parseResult(content string) (*Result, bool) {
	payload, ok := extractJSON(content)
	if !ok {
		return nil, false
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, false
	}

	title := strings.TrimSpace(raw.SectionTitle)
	if title == "" {
		title = strings.TrimSpace(raw.Title)
	}
	if title == "" {
		return nil, false
	}

	conns := raw.Connections
	if len(conns) == 0 {
		conns = raw.LinkedNotes
	}

	result := &Result{Title: title, Connections: []Connection{}}
	for _, c := range conns {
		target := strings.TrimSpace(c.TargetSectionTitle)
		if target == "" {
			target = strings.TrimSpace(c.Target)
		}
		if target == "" {
			continue
		}
		rel := strings.TrimSpace(c.RelationshipExplanation)
		if rel == "" {
			rel = strings.TrimSpace(c.Relationship)
		}
		result.Connections = append(result.Connections, Connection{
			Target:       target,
			Relationship: clampWords(rel, maxRelationshipWords),
		})
	}
	return result, true
}

// extractJSON pulls the outermost JSON object out of a completion that may
// wrap it in prose or code fences.
func extractJSON(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

func clampWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}

// FallbackTitle derives a deterministic title from the first five words of
// the captured text.
func FallbackTitle(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "Untitled"
	}
	if len(words) <= 5 {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:5], " ") + "..."
}
