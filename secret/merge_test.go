package secret

import (
	"encoding/json"
	"reflect"
	"testing"
)

func str(s string) *string { return &s }

func rec(k, v string) Record { return Record{Key: str(k), Value: str(v)} }

func records(rs ...Record) *[]Record { return &rs }

func entries(m Map) map[string]string {
	out := make(map[string]string, m.Len())
	m.Range(func(k, v string) bool {
		out[k] = v
		return true
	})
	return out
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		resp *RawResponse
		want map[string]string
	}{
		{
			name: "nil response",
			resp: nil,
			want: map[string]string{},
		},
		{
			name: "empty secrets no imports",
			resp: &RawResponse{Secrets: records()},
			want: map[string]string{},
		},
		{
			name: "no imports field",
			resp: &RawResponse{Secrets: records(rec("A", "1"))},
			want: map[string]string{"A": "1"},
		},
		{
			name: "direct last write wins",
			resp: &RawResponse{Secrets: records(rec("A", "1"), rec("A", "2"))},
			want: map[string]string{"A": "2"},
		},
		{
			name: "empty value kept",
			resp: &RawResponse{Secrets: records(rec("X", ""))},
			want: map[string]string{"X": ""},
		},
		{
			name: "absent value skipped",
			resp: &RawResponse{Secrets: records(Record{Key: str("X")}, rec("Y", "1"))},
			want: map[string]string{"Y": "1"},
		},
		{
			name: "absent or empty key skipped",
			resp: &RawResponse{Secrets: records(Record{Value: str("v")}, rec("", "v"))},
			want: map[string]string{},
		},
		{
			name: "direct wins over import",
			resp: &RawResponse{
				Secrets: records(rec("K", "direct")),
				Imports: []ImportBlock{{Secrets: []Record{rec("K", "imported")}}},
			},
			want: map[string]string{"K": "direct"},
		},
		{
			name: "first listed import wins",
			resp: &RawResponse{
				Secrets: records(),
				Imports: []ImportBlock{
					{Secrets: []Record{rec("k", "a")}},
					{Secrets: []Record{rec("k", "b")}},
				},
			},
			want: map[string]string{"k": "a"},
		},
		{
			name: "earlier import block beats every later one",
			resp: &RawResponse{
				Secrets: records(rec("D", "direct")),
				Imports: []ImportBlock{
					{Secrets: []Record{rec("A", "first")}},
					{Secrets: []Record{rec("A", "second"), rec("B", "second"), rec("D", "second")}},
					{Secrets: []Record{rec("A", "third"), rec("B", "third"), rec("C", "third")}},
				},
			},
			want: map[string]string{"A": "first", "B": "second", "C": "third", "D": "direct"},
		},
		{
			name: "first record within a block wins",
			resp: &RawResponse{
				Secrets: records(),
				Imports: []ImportBlock{{Secrets: []Record{rec("k", "1"), rec("k", "2")}}},
			},
			want: map[string]string{"k": "1"},
		},
		{
			name: "import with absent value skipped",
			resp: &RawResponse{
				Secrets: records(),
				Imports: []ImportBlock{
					{Secrets: []Record{{Key: str("k")}}},
					{Secrets: []Record{rec("k", "far")}},
				},
			},
			want: map[string]string{"k": "far"},
		},
		{
			name: "nil direct secrets with imports",
			resp: &RawResponse{Imports: []ImportBlock{{Secrets: []Record{rec("k", "v")}}}},
			want: map[string]string{"k": "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entries(Merge(tt.resp))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge_EndToEndScenario(t *testing.T) {
	body := `{
		"secrets": [{"secretKey":"DB_URL","secretValue":"x"}],
		"imports": [{"secretPath":"/shared","environment":"prod","secrets":[
			{"secretKey":"DB_URL","secretValue":"y"},
			{"secretKey":"API_KEY","secretValue":"z"}
		]}]
	}`
	var resp RawResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	got := entries(Merge(&resp))
	want := map[string]string{"DB_URL": "x", "API_KEY": "z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() = %v, want %v", got, want)
	}
}

func TestMerge_Deterministic(t *testing.T) {
	resp := &RawResponse{
		Secrets: records(rec("A", "1"), rec("B", "2")),
		Imports: []ImportBlock{
			{Secrets: []Record{rec("C", "3"), rec("A", "x")}},
			{Secrets: []Record{rec("C", "4"), rec("D", "5")}},
		},
	}

	first := entries(Merge(resp))
	for i := 0; i < 20; i++ {
		if got := entries(Merge(resp)); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Merge() = %v, want %v", i, got, first)
		}
	}
}

func TestRecord_JSONPresence(t *testing.T) {
	var recs []Record
	if err := json.Unmarshal([]byte(`[{"secretKey":"A","secretValue":""},{"secretKey":"B"},{"secretKey":"C","secretValue":null}]`), &recs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	got := entries(Merge(&RawResponse{Secrets: &recs}))
	want := map[string]string{"A": ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() = %v, want %v", got, want)
	}
}

func TestMap_Accessors(t *testing.T) {
	src := map[string]string{"B": "2", "A": "1"}
	m := NewMap(src)
	src["C"] = "3"

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (NewMap must copy)", m.Len())
	}
	if v, ok := m.Get("A"); !ok || v != "1" {
		t.Errorf("Get(A) = %q, %v", v, ok)
	}
	if _, ok := m.Get("C"); ok {
		t.Error("Get(C) should be absent")
	}
	if keys := m.Keys(); !reflect.DeepEqual(keys, []string{"A", "B"}) {
		t.Errorf("Keys() = %v", keys)
	}

	var visited []string
	m.Range(func(k, v string) bool {
		visited = append(visited, k)
		return false
	})
	if len(visited) != 1 {
		t.Errorf("Range should stop when fn returns false, visited %v", visited)
	}

	var zero Map
	if zero.Len() != 0 || len(zero.Keys()) != 0 {
		t.Error("zero Map should be empty")
	}
}
