package normalize

import (
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare 10 digits",
			raw:  "2158050594",
			want: "+12158050594",
		},
		{
			name: "already E.164",
			raw:  "+12158050594",
			want: "+12158050594",
		},
		{
			name: "formatted with punctuation",
			raw:  "(215) 805-0594",
			want: "+12158050594",
		},
		{
			name: "11 digits with leading one",
			raw:  "1 215 805 0594",
			want: "+12158050594",
		},
		{
			name: "spoken with words",
			raw:  "it's 215 805 0594 thanks",
			want: "+12158050594",
		},
		{
			name: "too long keeps last ten",
			raw:  "00112158050594",
			want: "+12158050594",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
		{
			name: "no digits at all",
			raw:  "call me maybe",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.raw)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{
		"2158050594",
		"+12158050594",
		"(215) 805-0594",
		"00112158050594",
		"805",
		"",
		"nonsense",
	}

	for _, in := range inputs {
		once := NormalizePhone(in)
		twice := NormalizePhone(once)
		if once != twice {
			t.Errorf("NormalizePhone not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestPhoneForSpeech(t *testing.T) {
	tests := []struct {
		e164 string
		want string
	}{
		{"+12158050594", "215, 805, 0594"},
		{"2158050594", "215, 805, 0594"},
		{"+1805", "8 0 5"},
	}

	for _, tt := range tests {
		got := PhoneForSpeech(tt.e164)
		if got != tt.want {
			t.Errorf("PhoneForSpeech(%q) = %q, want %q", tt.e164, got, tt.want)
		}
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"maria lopez", "Maria Lopez"},
		{"  JOHN   SMITH  ", "John Smith"},
		{"o'brien", "O'brien"},
		{"anna-marie", "Anna-marie"},
		{"bob!!! @#$", "Bob"},
		{"", ""},
	}

	for _, tt := range tests {
		got := CleanName(tt.raw)
		if got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCleanAddress(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  123   Main   St ", "123 Main St"},
		{"55 Elm\tStreet\nApt 2", "55 Elm Street Apt 2"},
		{"", ""},
	}

	for _, tt := range tests {
		got := CleanAddress(tt.raw)
		if got != tt.want {
			t.Errorf("CleanAddress(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
