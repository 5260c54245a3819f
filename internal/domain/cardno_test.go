package domain

import "testing"

func TestFormatCardNoPadsButNeverTruncates(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{1, "AB001"},
		{42, "AB042"},
		{999, "AB999"},
		{1000, "AB1000"},
		{12345, "AB12345"},
	}
	for _, c := range cases {
		if got := FormatCardNo("AB", c.n); got != c.want {
			t.Fatalf("FormatCardNo(AB, %d) = %s, want %s", c.n, got, c.want)
		}
	}
}

func TestCardSuffix(t *testing.T) {
	if n, ok := CardSuffix("AB1000", "AB"); !ok || n != 1000 {
		t.Fatalf("expected 1000, got %d %v", n, ok)
	}
	for _, cardNo := range []string{"ABxyz", "AB", "ABC001", "XY001", "AB-01", "AB+1"} {
		if _, ok := CardSuffix(cardNo, "AB"); ok {
			t.Fatalf("expected %s to be rejected", cardNo)
		}
	}
}

func TestValidShortName(t *testing.T) {
	for _, ok := range []string{"A", "ACM", "MCS1", "ABCDEF"} {
		if !ValidShortName(ok) {
			t.Fatalf("expected %s valid", ok)
		}
	}
	for _, bad := range []string{"", "abc", "ABCDEFG", "A B", "AC-M"} {
		if ValidShortName(bad) {
			t.Fatalf("expected %s invalid", bad)
		}
	}
}
