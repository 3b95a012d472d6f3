package ai

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"ideaverse/internal/errors"
)

// Parser extracts a structured JSON document from raw model output.
//
// Model output is adversarial by accident, not by intent: the JSON the
// prompt asked for arrives wrapped in markdown fences, surrounded by prose,
// decorated with bold markers, or truncated mid-stream when the token budget
// runs out. The cascade below orders strategies from the most structured
// assumption to the most permissive, so a well-formed response pays for one
// cheap attempt and only degraded responses fall through to destructive
// recovery.

var (
	fencedJSONRe  = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	fencedAnyRe   = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
	boldQuotedRe  = regexp.MustCompile(`:\s*\*\*"([^"]*)"\*\*`)
	boldBareRe    = regexp.MustCompile(`:\s*\*\*([^,}\]"]+)\*\*`)
)

// Parse runs the extraction cascade and returns the first candidate that is
// valid JSON. It fails with a RESPONSE_FORMAT error only after every
// strategy is exhausted; the offending text is logged, not returned.
func Parse(raw string) (json.RawMessage, error) {
	if doc, ok := extract(raw); ok {
		return doc, nil
	}

	// Aggressive strip: markdown emphasis frequently breaks otherwise-valid
	// JSON. Irreversible, so only attempted after strategies 1-4 failed.
	stripped := strings.NewReplacer("*", "", "`", "").Replace(raw)
	if doc, ok := extract(stripped); ok {
		return doc, nil
	}

	if repaired := repairTruncated(raw); repaired != "" {
		if doc, ok := extract(repaired); ok {
			return doc, nil
		}
	}

	preview := raw
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}
	log.Printf("[Parser] all strategies exhausted, content preview: %s", preview)
	return nil, errors.ResponseFormat()
}

// ParseInto runs Parse and decodes the extracted document into out
func ParseInto(raw string, out interface{}) error {
	doc, err := Parse(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(doc, out); err != nil {
		log.Printf("[Parser] extracted JSON does not match expected shape: %v", err)
		return errors.ResponseFormat()
	}
	return nil
}

// extract runs strategies 1-4 against the given text
func extract(text string) (json.RawMessage, bool) {
	// Strategy 1: ```json fence
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		if doc, ok := tryParse(m[1]); ok {
			return doc, true
		}
	}

	// Strategy 2: any fence (model omitted the json tag)
	if m := fencedAnyRe.FindStringSubmatch(text); m != nil {
		if doc, ok := tryParse(m[1]); ok {
			return doc, true
		}
	}

	// Strategy 3: outer-brace slice, tolerating prose before/after
	if first := strings.Index(text, "{"); first != -1 {
		if last := strings.LastIndex(text, "}"); last > first {
			if doc, ok := tryParse(text[first : last+1]); ok {
				return doc, true
			}
		}
	}

	// Strategy 4: the whole trimmed text
	if doc, ok := tryParse(text); ok {
		return doc, true
	}

	return nil, false
}

// tryParse cleans a candidate and checks it is a standalone JSON document
func tryParse(candidate string) (json.RawMessage, bool) {
	cleaned := cleanJSON(strings.TrimSpace(candidate))
	if cleaned == "" {
		return nil, false
	}
	var probe interface{}
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, false
	}
	return json.RawMessage(cleaned), true
}

// cleanJSON strips trailing commas and normalizes bold-wrapped scalar
// values ("key": **"v"** and "key": **v**), both common model defects.
func cleanJSON(s string) string {
	s = trailingComma.ReplaceAllString(s, "$1")
	s = boldQuotedRe.ReplaceAllString(s, `: "$1"`)
	s = boldBareRe.ReplaceAllString(s, `: "$1"`)
	return s
}

// repairTruncated closes a document cut off mid-stream. It walks from the
// first structural opener with a quote/escape-aware scanner, tracking the
// expected closers; characters inside string literals are never inspected
// for structure. At end of input an open string gets its closing quote and
// the remaining closers are appended in LIFO order. Returns "" when the
// text has no structural opener to anchor on.
func repairTruncated(raw string) string {
	objStart := strings.IndexByte(raw, '{')
	arrStart := strings.IndexByte(raw, '[')
	start := objStart
	if start == -1 || (arrStart != -1 && arrStart < start) {
		start = arrStart
	}
	if start == -1 {
		return ""
	}

	text := raw[start:]
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == ch {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(text)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}
