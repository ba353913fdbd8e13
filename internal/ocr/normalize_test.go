package ocr

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "line one\r\nline two\r", "line one\nline two"},
		{"tabs and runs", "make:\t\tHonda   Accord", "make: Honda Accord"},
		{"ruled lines dropped", "header\n------\nbody", "header\n\nbody"},
		{"blank runs collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"trailing space trimmed", "claim form   \nrow two  ", "claim form\nrow two"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Normalize(c.in); got != c.want {
				t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
