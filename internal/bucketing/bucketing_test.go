package bucketing

import (
	"fmt"
	"testing"
)

func TestBucketDeterminism(t *testing.T) {
	for i := 0; i < 1000; i++ {
		userID := fmt.Sprintf("user-%d", i)
		b1 := Bucket("checkout", userID)
		b2 := Bucket("checkout", userID)
		if b1 != b2 {
			t.Fatalf("bucket not deterministic for %q: %d != %d", userID, b1, b2)
		}
	}
}

func TestBucketRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		b := Bucket("checkout", fmt.Sprintf("user-%d", i))
		if b < 0 || b >= 100 {
			t.Fatalf("bucket out of range: %d", b)
		}
	}
}

func TestBucketAnonymousIsZero(t *testing.T) {
	if got := Bucket("checkout", ""); got != 0 {
		t.Fatalf("expected anonymous bucket 0, got %d", got)
	}
}

func TestBucketUniformity(t *testing.T) {
	const n = 100000
	counts := map[int]int{}
	for i := 0; i < n; i++ {
		b := Bucket("checkout-flag", fmt.Sprintf("u-%d", i))
		counts[b]++
	}

	for _, r := range []int{10, 25, 50, 75, 90} {
		count := 0
		for b, c := range counts {
			if b < r {
				count += c
			}
		}
		frac := float64(count) / float64(n)
		want := float64(r) / 100
		if diff := frac - want; diff < -0.01 || diff > 0.01 {
			t.Errorf("rollout %d: fraction %.4f not within 1%% of %.4f", r, frac, want)
		}
	}
}

func TestRolloutMonotonicity(t *testing.T) {
	users := make([]string, 500)
	for i := range users {
		users[i] = fmt.Sprintf("mono-%d", i)
	}

	for r1 := 0; r1 <= 100; r1 += 5 {
		for r2 := r1; r2 <= 100; r2 += 5 {
			for _, u := range users {
				if EnabledForUser("flag", u, r1) && !EnabledForUser("flag", u, r2) {
					t.Fatalf("monotonicity violated for user %s: enabled at %d but not at %d", u, r1, r2)
				}
			}
		}
	}
}

func TestEnabledForUserFullRollout(t *testing.T) {
	if !EnabledForUser("flag", "someone", 100) {
		t.Fatal("expected rollout 100 to always be enabled")
	}
}

func TestEnabledForUserZeroRollout(t *testing.T) {
	if EnabledForUser("flag", "someone", 0) {
		t.Fatal("expected rollout 0 to always be disabled")
	}
}
