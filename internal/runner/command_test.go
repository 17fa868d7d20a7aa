package runner

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in      string
		want    Command
		wantErr bool
	}{
		{"", Command{}, false},
		{"   ", Command{}, false},
		{"hint", Command{Kind: CmdHint}, false},
		{"HINT 3", Command{Kind: CmdHint, Slot: 3}, false},
		{"h #2", Command{Kind: CmdHint, Slot: 2}, false},
		{"hint 0", Command{}, true},
		{"hint two", Command{}, true},
		{"status", Command{Kind: CmdStatus}, false},
		{"s", Command{Kind: CmdStatus}, false},
		{"quit", Command{Kind: CmdQuit}, false},
		{"exit", Command{Kind: CmdQuit}, false},
		{"?", Command{Kind: CmdHelp}, false},
		{"solve", Command{}, true},
	}

	for _, tt := range tests {
		got, err := ParseCommand(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCommand(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
