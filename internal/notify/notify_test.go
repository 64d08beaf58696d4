package notify

import "testing"

func TestNew_BackendSelection(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"desktop", "notify.Desktop"},
		{"log", "notify.Logger"},
		{"none", "notify.Nop"},
		{"", "notify.Nop"},
		{"bogus", "notify.Nop"},
	}

	for _, tt := range tests {
		n := New(tt.kind, nil)
		var got string
		switch n.(type) {
		case Desktop:
			got = "notify.Desktop"
		case Logger:
			got = "notify.Logger"
		case Nop:
			got = "notify.Nop"
		}
		if got != tt.want {
			t.Errorf("New(%q) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestDefaults_CoversAllDefs(t *testing.T) {
	msgs := Defaults()
	if len(msgs) != len(MessageDefs) {
		t.Fatalf("Defaults() has %d entries, want %d", len(msgs), len(MessageDefs))
	}
	for _, def := range MessageDefs {
		msg, ok := msgs[def.Type]
		if !ok {
			t.Errorf("Defaults() missing %s", def.Type)
			continue
		}
		if msg.Body != def.DefaultBody || msg.IsError != def.IsError {
			t.Errorf("Defaults()[%s] = %+v, want def %+v", def.Type, msg, def)
		}
	}
}

func TestNop_IsSilent(t *testing.T) {
	var n Notifier = Nop{}
	n.Notify(ResponseCompleted)
	n.Error("nothing should happen")
}
