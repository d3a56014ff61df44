package auth

import (
	"regexp"
	"testing"
)

var plainUsernamePattern = regexp.MustCompile(`^[a-z]+-[a-z]+$`)
var suffixedUsernamePattern = regexp.MustCompile(`^[a-z]+-[a-z]+-\d{2}$`)

func TestGenerateUsername(t *testing.T) {
	t.Run("matches adjective-animal shape", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			got := GenerateUsername()
			if !plainUsernamePattern.MatchString(got) {
				t.Fatalf("GenerateUsername() = %q, want adjective-animal shape", got)
			}
		}
	})

	t.Run("draws from the word lists", func(t *testing.T) {
		adjSet := map[string]bool{}
		for _, a := range adjectives {
			adjSet[a] = true
		}
		animalSet := map[string]bool{}
		for _, a := range animals {
			animalSet[a] = true
		}

		for i := 0; i < 20; i++ {
			got := GenerateUsername()
			loc := plainUsernamePattern.FindStringSubmatchIndex(got)
			if loc == nil {
				t.Fatalf("GenerateUsername() = %q did not match pattern", got)
			}
			parts := splitOnce(got)
			if !adjSet[parts[0]] {
				t.Errorf("adjective part %q not in adjectives list", parts[0])
			}
			if !animalSet[parts[1]] {
				t.Errorf("animal part %q not in animals list", parts[1])
			}
		}
	})

	t.Run("produces varied output across calls", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			seen[GenerateUsername()] = true
		}
		if len(seen) < 2 {
			t.Error("GenerateUsername() returned the same value on every call out of 50 attempts")
		}
	})
}

func TestGenerateUsernameWithSuffix(t *testing.T) {
	t.Run("matches adjective-animal-NN shape", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			got := GenerateUsernameWithSuffix()
			if !suffixedUsernamePattern.MatchString(got) {
				t.Fatalf("GenerateUsernameWithSuffix() = %q, want adjective-animal-NN shape", got)
			}
		}
	})
}

func splitOnce(s string) [2]string {
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			return [2]string{s[:i], s[i+1:]}
		}
	}
	return [2]string{s, ""}
}
