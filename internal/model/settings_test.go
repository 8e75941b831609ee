package model

import "testing"

func TestSettings_Value(t *testing.T) {
	s := Settings(`{"background": "red", "notifications":false}`)
	got, err := s.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}
	if _, ok := got.(string); !ok {
		t.Fatalf("Value() type = %T, want string", got)
	}

	var empty Settings
	got, err = empty.Value()
	if err != nil || got != nil {
		t.Errorf("empty Value() = %v, %v; want nil, nil", got, err)
	}
}

func TestSettings_Scan(t *testing.T) {
	var s Settings
	if err := s.Scan([]byte(`{"notifications":true}`)); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if string(s) != `{"notifications":true}` {
		t.Errorf("Scan = %s", s)
	}
	if err := s.Scan(3.14); err == nil {
		t.Error("expected error for unsupported source type")
	}
}

func TestSettings_Bool(t *testing.T) {
	tests := []struct {
		doc  string
		want bool
	}{
		{`{"notifications":true}`, true},
		{`{"background": "red", "notifications":false}`, false},
		{`{"notifications":"true"}`, false},
		{`{}`, false},
		{`not json`, false},
	}

	for _, tt := range tests {
		if got := Settings(tt.doc).Bool("notifications"); got != tt.want {
			t.Errorf("Settings(%s).Bool = %v, want %v", tt.doc, got, tt.want)
		}
	}
}
