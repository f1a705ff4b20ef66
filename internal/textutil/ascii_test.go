package textutil

import "testing"

func TestASCII(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1 di 3 | 45.2% | 2.1MiB/s | fine tra 00:12", "1 di 3 | 45.2% | 2.1MiB/s | fine tra 00:12"},
		{"Già scaricato – città", "Gia scaricato - citta"},
		{"Scaricando…", "Scaricando..."},
		{"emoji 🎵 gone", "emoji  gone"},
		{"tab\tkept\nnewline dropped", "tab\tkeptnewline dropped"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ASCII(tt.in); got != tt.want {
			t.Errorf("ASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTernary(t *testing.T) {
	if Ternary(true, "a", "b") != "a" || Ternary(false, 1, 2) != 2 {
		t.Fatal("unexpected Ternary result")
	}
}
