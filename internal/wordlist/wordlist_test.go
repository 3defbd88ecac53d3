package wordlist

import (
	"strings"
	"testing"
)

func TestGenerateReturnsDistinctWords(t *testing.T) {
	name := Generate(3)
	words := strings.Split(name, "-")
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d (%q)", len(words), name)
	}

	seen := make(map[string]bool)
	for _, w := range words {
		if seen[w] {
			t.Fatalf("word %q repeated in %q", w, name)
		}
		seen[w] = true
	}
}

func TestGenerateClampsToPoolSize(t *testing.T) {
	name := Generate(len(animals) + 50)
	words := strings.Split(name, "-")
	if len(words) != len(animals) {
		t.Fatalf("expected %d words when k exceeds the dictionary, got %d", len(animals), len(words))
	}
}

func TestGenerateDrawsFromDictionary(t *testing.T) {
	valid := make(map[string]bool, len(animals))
	for _, a := range animals {
		valid[a] = true
	}

	name := Generate(5)
	for _, w := range strings.Split(name, "-") {
		if !valid[w] {
			t.Fatalf("word %q is not in the dictionary", w)
		}
	}
}

func TestGenerateVariesAcrossCalls(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		seen[Generate(3)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected Generate to vary across calls, got only %d distinct names in 20 draws", len(seen))
	}
}
