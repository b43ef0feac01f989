package model

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Action
		wantErr bool
	}{
		{"added", "ADDED", ActionAdded, false},
		{"commented", "COMMENTED", ActionCommented, false},
		{"created", "CREATED", ActionCreated, false},
		{"deleted", "DELETED", ActionDeleted, false},
		{"updated", "UPDATED", ActionUpdated, false},
		{"uploaded", "UPLOADED", ActionUploaded, false},
		{"lowercase rejected", "created", "", true},
		{"unknown", "ARCHIVED", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestActionDisplay(t *testing.T) {
	if got := ActionCommented.Display(); got != "Commented" {
		t.Fatalf("got=%q want=%q", got, "Commented")
	}
	// unknown values fall back to the raw string
	if got := Action("WEIRD").Display(); got != "WEIRD" {
		t.Fatalf("got=%q want=%q", got, "WEIRD")
	}
}

func TestParseSource(t *testing.T) {
	if _, err := ParseSource("USER"); err != nil {
		t.Fatalf("USER: %v", err)
	}
	if _, err := ParseSource("SYSTEM"); err != nil {
		t.Fatalf("SYSTEM: %v", err)
	}
	if _, err := ParseSource("ROBOT"); err == nil {
		t.Fatal("expected error for ROBOT")
	}
}

func TestNotificationPredicates(t *testing.T) {
	n := Notification{Action: ActionCommented, Source: SourceUser}
	if !n.IsComment() {
		t.Fatal("COMMENTED should be a comment")
	}
	if n.IsActivity() {
		t.Fatal("USER source should not be an activity")
	}

	n = Notification{Action: ActionCreated, Source: SourceSystem}
	if n.IsComment() {
		t.Fatal("CREATED should not be a comment")
	}
	if !n.IsActivity() {
		t.Fatal("SYSTEM source should be an activity")
	}
}
