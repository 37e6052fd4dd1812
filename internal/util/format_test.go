package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                              "0:00",
		61 * time.Second:               "1:01",
		10*time.Minute + 5*time.Second: "10:05",
		-time.Second:                   "0:00",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "0.00 sec",
		1500 * time.Millisecond: "1.50 sec",
		2 * time.Second:         "2.00 sec",
		-time.Second:            "0.00 sec",
	}
	for in, want := range cases {
		if got := FormatSeconds(in); got != want {
			t.Fatalf("FormatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}
