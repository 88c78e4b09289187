package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	ID    int    `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONFormatter{}).Write(&buf, sample{ID: 1, Title: "crash"}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"id":1,"title":"crash"}` {
		t.Fatalf("unexpected json output %q", got)
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (YAMLFormatter{}).Write(&buf, sample{ID: 1, Title: "crash"}); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "id: 1") || !strings.Contains(out, "title: crash") {
		t.Fatalf("unexpected yaml output %q", out)
	}
}
