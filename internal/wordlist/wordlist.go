// Package wordlist generates session names from a fixed animal dictionary.
package wordlist

import (
	"crypto/rand"
	"log"
	"math/big"
	"strings"
)

// animals is the fixed ~95-word dictionary session names are drawn from.
var animals = []string{
	"aardvark", "aardwolf", "anteater", "antelope", "ape", "armadillo", "badger", "bat", "bear", "beaver", "bison",
	"bluejay", "bobcat", "buffalo", "cardinal", "caribou", "cat", "cheetah", "chicken", "chimpanzee", "chipmunk",
	"cougar", "cow", "crow", "deer", "dingo", "dog", "duck", "eagle", "elephant", "falcon",
	"ferret", "fox", "gazelle", "giraffe", "goat", "goose", "gorilla", "hawk", "hedgehog", "horse",
	"hummingbird", "hyena", "ibex", "jaguar", "jay", "kangaroo", "koala", "lemur", "leopard", "lion",
	"lynx", "magpie", "meerkat", "mink", "mongoose", "monkey", "moose", "muskox", "opossum", "orangutan",
	"ostrich", "otter", "owl", "panda", "pangolin", "panther", "parrot", "peacock", "penguin", "pig",
	"platypus", "porcupine", "rabbit", "raccoon", "raven", "reindeer", "robin", "sheep", "skunk", "sloth",
	"sparrow", "squirrel", "stoat", "swan", "tiger", "turkey", "wallaby", "weasel", "wolf", "wolverine",
	"wombat", "woodpecker", "yak", "zebra",
}

// Generate returns a hyphen-joined session name made of k distinct words
// drawn uniformly without replacement from the animal dictionary.
func Generate(k int) string {
	if k > len(animals) {
		k = len(animals)
	}

	pool := make([]string, len(animals))
	copy(pool, animals)

	words := make([]string, 0, k)
	for i := 0; i < k; i++ {
		j := randomIndex(len(pool))
		words = append(words, pool[j])
		pool[j] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}

	return strings.Join(words, "-")
}

// randomIndex returns a cryptographically secure random index for a slice
// of the given length.
func randomIndex(n int) int {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		log.Panic("failed to generate random index: ", err)
	}
	return int(i.Int64())
}
