package kv

import (
	"encoding/json"
	"errors"
	"github.com/caplayground/caplay/lib/native"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"zoom":1.5}`, `{"zoom":1.5}`},
		{`42`, `42`},
		{`true`, `true`},
		{`"quoted"`, `"quoted"`},
		{`hello`, `"hello"`},
		{`{broken`, `"{broken"`},
		{``, `""`},
	}

	for _, tt := range tests {
		out, err := json.Marshal(parseValue(tt.in))
		if err != nil {
			t.Fatalf("parseValue(%q): %v", tt.in, err)
		}
		if string(out) != tt.want {
			t.Errorf("parseValue(%q) encodes to %s, want %s", tt.in, out, tt.want)
		}
	}
}

// readOnly fails every removal
type readOnly struct{ native.Storage }

func (readOnly) RemoveItem(string) error { return errors.New("read-only") }

func TestRemoveKeys(t *testing.T) {
	spread := perfKeySpread
	t.Cleanup(func() { perfKeySpread = spread })
	perfKeySpread = 3
	_, iter := getKeys("cleanup")

	ls := native.NewMemoryStorage()
	iter(func(k string) { _ = ls.SetItem(k, "1") })
	_ = ls.SetItem("editor/theme", `"dark"`)

	tests := []struct {
		name    string
		ls      native.Storage
		removed int
		wantErr bool
	}{
		{"removes benchmark keys", ls, 3, false},
		{"missing keys are fine", ls, 3, false},
		{"stops at first error", readOnly{ls}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := removeKeys(tt.ls, iter)
			if n != tt.removed || (err != nil) != tt.wantErr {
				t.Errorf("removeKeys = %d, %v; want %d, error %v", n, err, tt.removed, tt.wantErr)
			}
		})
	}

	if keys := ls.Keys(); len(keys) != 1 || keys[0] != "editor/theme" {
		t.Errorf("remaining keys = %v", keys)
	}
}
