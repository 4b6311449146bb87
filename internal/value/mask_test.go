package value

import (
	"testing"
	"time"
)

func TestMaskFormat(t *testing.T) {
	when := time.Date(2021, time.April, 1, 9, 5, 7, 123456789, time.FixedZone("", -5*3600-30*60))
	cases := []struct {
		mask string
		want string
	}{
		{"yyyy-MM-dd HH:mm:ss", "2021-04-01 09:05:07"},
		{"yy/M/d H:m:s", "21/4/1 9:5:7"},
		{"dd MMM yyyy", "01 Apr 2021"},
		{"dddd, MMMM d", "Thursday, April 1"},
		{"ddd", "Thu"},
		{"hh:mm tt", "09:05 AM"},
		{"h t", "9 A"},
		{"HH:mm:ss.fff", "09:05:07.123"},
		{"ss.fffffff", "07.1234567"},
		{"yyyy'T'HH", "2021T09"},
		{`yyyy"-at-"HH`, "2021-at-09"},
		{`\y\e\a\r yyyy`, "year 2021"},
		{"%d", "1"},
		{"zzz", "-05:30"},
		{"zz", "-05"},
		{"yyyyMMdd", "20210401"},
	}
	for _, tc := range cases {
		m, err := ParseMask(tc.mask)
		if err != nil {
			t.Fatalf("%s: %v", tc.mask, err)
		}
		if got := m.Format(when); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.mask, got, tc.want)
		}
	}
}

func TestMaskTrimmedFraction(t *testing.T) {
	m := MustParseMask("HH:mm:ss.FFF")
	whole := time.Date(2021, 1, 1, 10, 0, 0, 0, time.UTC)
	if got := m.Format(whole); got != "10:00:00" {
		t.Fatalf("zero fraction: got %q", got)
	}
	part := time.Date(2021, 1, 1, 10, 0, 0, 120000000, time.UTC)
	if got := m.Format(part); got != "10:00:00.12" {
		t.Fatalf("partial fraction: got %q", got)
	}
}

func TestMaskAfternoon(t *testing.T) {
	m := MustParseMask("h:mm tt")
	noon := time.Date(2021, 1, 1, 12, 30, 0, 0, time.UTC)
	if got := m.Format(noon); got != "12:30 PM" {
		t.Fatalf("got %q", got)
	}
	midnight := time.Date(2021, 1, 1, 0, 15, 0, 0, time.UTC)
	if got := m.Format(midnight); got != "12:15 AM" {
		t.Fatalf("got %q", got)
	}
}

func TestParseMaskErrors(t *testing.T) {
	for _, bad := range []string{"", "yyyy'unterminated", `HH\`, "ffffffffff"} {
		if _, err := ParseMask(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
