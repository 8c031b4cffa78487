package match

import (
	"math"
	"testing"
)

// TestRatioIdenticalStrings verifies identical inputs score 1.0.
func TestRatioIdenticalStrings(t *testing.T) {
	if got := Ratio("episode_01", "episode_01"); got != 1.0 {
		t.Fatalf("Ratio() = %v, want 1.0", got)
	}
}

// TestRatioBothEmpty verifies two empty strings are a perfect match.
func TestRatioBothEmpty(t *testing.T) {
	if got := Ratio("", ""); got != 1.0 {
		t.Fatalf("Ratio() = %v, want 1.0", got)
	}
}

// TestRatioOneEmpty verifies an empty side scores zero.
func TestRatioOneEmpty(t *testing.T) {
	if got := Ratio("abc", ""); got != 0 {
		t.Fatalf("Ratio() = %v, want 0", got)
	}
}

// TestRatioDisjoint verifies strings with no common runes score zero.
func TestRatioDisjoint(t *testing.T) {
	if got := Ratio("abc", "xyz"); got != 0 {
		t.Fatalf("Ratio() = %v, want 0", got)
	}
}

// TestRatioKnownValue pins the ratio formula 2*M/(len(a)+len(b)):
// "abcd" and "bcde" share the block "bcd", so 2*3/8 = 0.75.
func TestRatioKnownValue(t *testing.T) {
	if got := Ratio("abcd", "bcde"); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("Ratio() = %v, want 0.75", got)
	}
}

// TestRatioSymmetric verifies argument order does not change the score.
func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"movie_part1", "movie_part1_audio"},
		{"show_s01e02", "show_s01e03"},
		{"a", "ab"},
	}
	for _, pair := range pairs {
		ab := Ratio(pair[0], pair[1])
		ba := Ratio(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("Ratio(%q, %q) = %v but reversed = %v", pair[0], pair[1], ab, ba)
		}
	}
}

// TestRatioSuffixedName covers the common case of an audio track named
// after its video plus a suffix.
func TestRatioSuffixedName(t *testing.T) {
	got := Ratio("episode_01", "episode_01_audio")
	want := 2.0 * 10 / (10 + 16)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Ratio() = %v, want %v", got, want)
	}
}
