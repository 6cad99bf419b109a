package tokens

import "testing"

func TestTiktokenEstimator(t *testing.T) {
	est, err := NewTiktokenEstimator("")
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}

	if est.Encoding() != "cl100k_base" {
		t.Errorf("Encoding() = %q", est.Encoding())
	}

	empty, _ := est.EstimateText("", "m")
	if empty != 0 {
		t.Errorf("empty text = %d tokens, want 0", empty)
	}

	short, _ := est.EstimateText("Hello", "m")
	long, _ := est.EstimateText("Hello there, this sentence is quite a bit longer.", "m")
	if short < 1 || long <= short {
		t.Errorf("unexpected counts: short=%d long=%d", short, long)
	}
}
