package jsonutil

import (
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUnmarshal_Direct(t *testing.T) {
	var p payload
	if err := Unmarshal([]byte(`{"name":"a","count":2}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Name != "a" || p.Count != 2 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestUnmarshal_Fenced(t *testing.T) {
	raw := "```json\n{\"name\":\"b\",\"count\":3}\n```"
	var p payload
	if err := Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal fenced: %v", err)
	}
	if p.Name != "b" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestUnmarshal_ProseWrapped(t *testing.T) {
	raw := `Here is the result you asked for: {"name":"c","count":4} hope it helps`
	var p payload
	if err := Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal carved: %v", err)
	}
	if p.Name != "c" || p.Count != 4 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestUnmarshal_ArrayCarve(t *testing.T) {
	raw := "The list: [1,2,3]."
	var nums []int
	if err := Unmarshal([]byte(raw), &nums); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if len(nums) != 3 || nums[2] != 3 {
		t.Fatalf("unexpected array: %v", nums)
	}
}

func TestUnmarshal_Garbage(t *testing.T) {
	var p payload
	if err := Unmarshal([]byte("not json at all"), &p); err == nil {
		t.Fatal("expected error for non-JSON input")
	}
}

func TestStripFences_NoFence(t *testing.T) {
	if got := StripFences("  plain  "); got != "plain" {
		t.Fatalf("got %q", got)
	}
}

func TestMarshalNoEscape(t *testing.T) {
	b, err := MarshalNoEscape(map[string]string{"html": "<b>&</b>"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"html":"<b>&</b>"}` {
		t.Fatalf("unexpected output: %s", b)
	}
}
