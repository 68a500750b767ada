package team

import "testing"

func TestSimilarity(t *testing.T) {
	if got := Similarity("riverside", "riverside"); got != 1 {
		t.Fatalf("identical names similarity = %v, want 1", got)
	}
	if got := Similarity("", ""); got != 1 {
		t.Fatalf("empty names similarity = %v, want 1", got)
	}
	if got := Similarity("riverside", ""); got != 0 {
		t.Fatalf("empty vs name similarity = %v, want 0", got)
	}

	got := Similarity("riverside", "riverside red")
	if got <= DefaultSimilarityThreshold {
		t.Fatalf("near-identical names similarity = %v, want > %v", got, DefaultSimilarityThreshold)
	}

	got = Similarity("riverside", "union kc jr elite")
	if got >= DefaultSimilarityThreshold {
		t.Fatalf("unrelated names similarity = %v, want < %v", got, DefaultSimilarityThreshold)
	}

	a, b := "sporting blue valley", "sporting blu valley"
	if Similarity(a, b) != Similarity(b, a) {
		t.Fatalf("similarity is not symmetric for %q and %q", a, b)
	}
}
