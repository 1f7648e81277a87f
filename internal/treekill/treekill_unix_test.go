//go:build linux || darwin

package treekill

import "testing"

func TestParsePPID(t *testing.T) {
	tests := []struct {
		name     string
		stat     string
		wantPPID int
		wantOK   bool
	}{
		{"simple comm", "123 (bash) S 1 123 123 0 -1 ...", 1, true},
		{"comm with spaces and parens", "456 (my (weird) proc) S 42 456 456 0 -1 ...", 42, true},
		{"malformed, no closing paren", "not a stat line", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ppid, ok := parsePPID(tt.stat)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && ppid != tt.wantPPID {
				t.Fatalf("ppid = %d, want %d", ppid, tt.wantPPID)
			}
		})
	}
}

func TestKillToleratesAlreadyDeadProcess(t *testing.T) {
	// A pid that almost certainly does not exist; Kill must not error.
	if err := Kill(999999); err != nil {
		t.Fatalf("Kill on already-dead pid returned error: %v", err)
	}
}
