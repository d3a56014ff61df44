package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// adjectives and animals back the readable username generator used when a
// signup request omits a username. Ported from the two-word dictionary
// format of the original implementation's username generator.
var adjectives = []string{
	"swift", "brave", "calm", "dark", "eager", "fair", "gentle", "happy", "idle", "jolly", "keen",
	"lucky", "merry", "noble", "proud", "quick", "rapid", "sharp", "strong", "true", "vivid",
	"warm", "wise", "young", "zesty", "agile", "bold", "cool", "deft", "elite", "fast", "grand",
	"hale", "iron", "jade", "kind", "lush", "mild", "neat", "open", "pure", "quiet", "rare",
	"safe", "tall", "ultra", "vast", "wild", "amber", "azure", "coral", "cyber", "lunar", "neon",
	"pixel", "solar",
}

var animals = []string{
	"falcon", "otter", "tiger", "wolf", "eagle", "hawk", "lion", "bear", "fox", "deer", "owl",
	"crow", "heron", "lynx", "puma", "raven", "shark", "whale", "dolphin", "panther", "jaguar",
	"cobra", "viper", "python", "crane", "finch", "robin", "swift", "wren", "duck", "goose",
	"swan", "seal", "walrus", "badger", "ferret", "mink", "stoat", "hare", "rabbit", "moose",
	"elk", "bison", "horse", "zebra", "giraffe", "hippo", "rhino", "koala", "panda", "lemur",
	"gecko", "iguana", "turtle", "frog", "newt",
}

func randIndex(n int) int {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failing is unrecoverable; callers never see a
		// malformed username because the process can't safely continue.
		panic(err)
	}
	return int(i.Int64())
}

// GenerateUsername returns a random "adjective-animal" username.
func GenerateUsername() string {
	return fmt.Sprintf("%s-%s", adjectives[randIndex(len(adjectives))], animals[randIndex(len(animals))])
}

// GenerateUsernameWithSuffix appends a two-digit numeric suffix, used on
// retry after a collision.
func GenerateUsernameWithSuffix() string {
	return fmt.Sprintf("%s-%02d", GenerateUsername(), 10+randIndex(90))
}
