package llm

import "testing"

func TestExtractFirstJSONObject_Balanced(t *testing.T) {
	input := `Here is the data: {"news": {"ticker": "AAPL"}, "chart": null} trailing prose`
	got := ExtractFirstJSONObject(input)
	if got != `{"news": {"ticker": "AAPL"}, "chart": null}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractFirstJSONObject_BracesInsideStrings(t *testing.T) {
	input := `{"text": "uses { and } freely", "ok": true}`
	if got := ExtractFirstJSONObject(input); got != input {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractFirstJSONObject_NoObject(t *testing.T) {
	if got := ExtractFirstJSONObject("plain prose without json"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestExtractFirstJSONObject_Unbalanced(t *testing.T) {
	if got := ExtractFirstJSONObject(`{"open": {`); got != "" {
		t.Fatalf("expected empty for unbalanced input, got %q", got)
	}
}
