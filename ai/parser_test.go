package ai

import (
	"encoding/json"
	"strings"
	"testing"

	"ideaverse/internal/errors"
)

func TestParseFencedJSON(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"key\": \"value\"}\n```\nHope that helps!"
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(doc, &out); err != nil {
		t.Fatalf("extracted document is not valid JSON: %v", err)
	}
	if out["key"] != "value" {
		t.Errorf("got %q, want %q", out["key"], "value")
	}
}

func TestParseUntaggedFence(t *testing.T) {
	raw := "```\n{\"a\": 1}\n```"
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if string(doc) != `{"a": 1}` {
		t.Errorf("unexpected document: %s", doc)
	}
}

func TestParseBraceSliceWithProse(t *testing.T) {
	raw := `Sure! The analysis is {"result": "ok", "score": 7} as requested.`
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var out struct {
		Result string  `json:"result"`
		Score  float64 `json:"score"`
	}
	if err := json.Unmarshal(doc, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Result != "ok" || out.Score != 7 {
		t.Errorf("unexpected payload: %+v", out)
	}
}

func TestParseWholeText(t *testing.T) {
	doc, err := Parse(`[1, 2, 3]`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var out []int
	if err := json.Unmarshal(doc, &out); err != nil || len(out) != 3 {
		t.Fatalf("unexpected array: %s (%v)", doc, err)
	}
}

func TestParseTrailingCommas(t *testing.T) {
	raw := `{"items": [1, 2, 3,], "name": "x",}`
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var out struct {
		Items []int  `json:"items"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(doc, &out); err != nil {
		t.Fatalf("trailing commas not cleaned: %v", err)
	}
}

func TestParseBoldWrappedValues(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"quoted", `{"cause": **"root cause"**}`, "root cause"},
		{"bare", `{"cause": **severe**}`, "severe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse(tc.raw)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			var out map[string]string
			if err := json.Unmarshal(doc, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out["cause"] != tc.want {
				t.Errorf("got %q, want %q", out["cause"], tc.want)
			}
		})
	}
}

func TestParseAggressiveStrip(t *testing.T) {
	// Emphasis markers inside keys break strategies 1-4 outright
	raw := "{\"**status**\": \"done\"}"
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(doc, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["status"] != "done" {
		t.Errorf("strip did not normalize key: %v", out)
	}
}

func TestParseTruncatedObject(t *testing.T) {
	raw := `{"solutions": [{"id": 1, "name": "First"}, {"id": 2, "name": "Sec`
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed on truncated input: %v", err)
	}
	var out struct {
		Solutions []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"solutions"`
	}
	if err := json.Unmarshal(doc, &out); err != nil {
		t.Fatalf("unmarshal repaired document: %v", err)
	}
	if len(out.Solutions) != 2 {
		t.Fatalf("expected both solutions to survive repair, got %d", len(out.Solutions))
	}
	if out.Solutions[1].Name != "Sec" {
		t.Errorf("truncated string not closed in place: %q", out.Solutions[1].Name)
	}
}

func TestParseTruncatedWithEscapes(t *testing.T) {
	// The escaped quote must not flip the in-string state
	raw := `{"note": "he said \"go`
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(doc, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.HasPrefix(out["note"], `he said "go`) {
		t.Errorf("unexpected note: %q", out["note"])
	}
}

func TestParseIdempotentOnCleanInput(t *testing.T) {
	clean := `{"a":{"b":[1,2]},"c":"d"}`
	first, err := Parse(clean)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, err := Parse(string(first))
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("parse is not idempotent: %s vs %s", first, second)
	}
}

func TestParseExhaustedReturnsFormatError(t *testing.T) {
	_, err := Parse("I could not produce any structured output, sorry.")
	if err == nil {
		t.Fatal("expected an error for unparseable input")
	}
	if !errors.IsResponseFormat(err) {
		t.Errorf("expected RESPONSE_FORMAT, got %s", errors.GetCode(err))
	}
	if err.Error() != "AI response was not parseable; please retry" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestParseIntoShapeMismatch(t *testing.T) {
	var out []int
	err := ParseInto(`{"a": 1}`, &out)
	if err == nil {
		t.Fatal("expected shape mismatch error")
	}
	if !errors.IsResponseFormat(err) {
		t.Errorf("expected RESPONSE_FORMAT, got %s", errors.GetCode(err))
	}
}

func TestRepairTruncatedNoOpener(t *testing.T) {
	if got := repairTruncated("no structure here"); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}
