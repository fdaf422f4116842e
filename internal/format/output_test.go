package format

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type payload struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
	ParentID  string `json:"parentId,omitempty"`
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, payload{ID: "1"}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"id":"1","completed":false}` {
		t.Fatalf("got %s", got)
	}

	buf.Reset()
	if err := Write(&buf, payload{ID: "1"}, "json", true); err != nil {
		t.Fatalf("Write pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"id\": \"1\"") {
		t.Fatalf("expected indented output; got %s", buf.String())
	}
}

func TestWrite_YAMLUsesJSONNames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	in := map[string]any{"data": []payload{{ID: "1", ParentID: "p"}}}
	if err := Write(&buf, in, "yaml", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "parentId: p") {
		t.Fatalf("expected json field names; got:\n%s", buf.String())
	}

	var back map[string][]map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if back["data"][0]["id"] != "1" || back["data"][0]["completed"] != false {
		t.Fatalf("unexpected decode: %#v", back)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	if err := Write(&bytes.Buffer{}, 1, "edn", false); err == nil {
		t.Fatalf("expected error")
	}
}
