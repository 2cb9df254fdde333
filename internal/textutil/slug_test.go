package textutil

import "testing"

func TestTitleToFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Problem Set 1: Graphs", "problem-set-1-graphs.pdf"},
		{"  Lecture   3 -- Sorting  ", "lecture-3-sorting.pdf"},
		{"Série de Fourier", "serie-de-fourier.pdf"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := TitleToFilename(tt.title); got != tt.want {
				t.Fatalf("TitleToFilename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcd "
	}
	got := Slugify(long)
	if len(got) != MaxSlugLength {
		t.Fatalf("expected %d bytes, got %d (%q)", MaxSlugLength, len(got), got)
	}
}

func TestDeduperClaim(t *testing.T) {
	d := NewDeduper()
	got := []string{
		d.Claim("quiz.pdf"),
		d.Claim("quiz.pdf"),
		d.Claim("quiz-2.pdf"),
		d.Claim("quiz.pdf"),
	}
	want := []string{"quiz.pdf", "quiz-2.pdf", "quiz-2-2.pdf", "quiz-3.pdf"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("claim %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFilenameTitle(t *testing.T) {
	if got := FilenameTitle("problem-set-1.pdf"); got != "problem set 1" {
		t.Fatalf("FilenameTitle = %q", got)
	}
	if got := FilenameTitle("MIT6_006S20_ps1.PDF"); got != "MIT6_006S20_ps1" {
		t.Fatalf("FilenameTitle = %q", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("6.006 Spring/2020"); got != "6_006_spring_2020" {
		t.Fatalf("SanitizeToken = %q", got)
	}
	if got := SanitizeToken("  "); got != "unknown" {
		t.Fatalf("SanitizeToken blank = %q", got)
	}
}
