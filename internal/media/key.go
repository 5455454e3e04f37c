package media

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// sanitizeName replaces every character outside [A-Za-z0-9.-] with an
// underscore, preventing path traversal and storage-key injection through
// attacker-controlled file names.
func sanitizeName(name string) string {
	return unsafeKeyChars.ReplaceAllString(name, "_")
}

// KeyDeriver produces collision-resistant storage keys. Uniqueness is
// probabilistic only: a millisecond timestamp plus a random integer in
// [0, 1e6). That is the sole uniqueness mechanism — collisions are an
// accepted risk, not handled.
type KeyDeriver struct {
	now     func() time.Time
	randInt func(n int) int
}

// NewKeyDeriver returns a deriver backed by the real clock and math/rand.
func NewKeyDeriver() *KeyDeriver {
	return &KeyDeriver{now: time.Now, randInt: rand.Intn}
}

// NewKeyDeriverWith returns a deriver with an injected clock and random
// source, for deterministic tests.
func NewKeyDeriverWith(now func() time.Time, randInt func(n int) int) *KeyDeriver {
	return &KeyDeriver{now: now, randInt: randInt}
}

// Derive composes "prefix/epochMillis_rand_sanitizedName".
func (d *KeyDeriver) Derive(prefix, originalName string) string {
	return fmt.Sprintf("%s/%d_%d_%s",
		prefix, d.now().UnixMilli(), d.randInt(1_000_000), sanitizeName(originalName))
}

// DeriveFlat composes "prefix/stem_epochMillis_rand.ext" for generated
// names that have no meaningful original file name (remote fetches).
func (d *KeyDeriver) DeriveFlat(prefix, stem, ext string) string {
	return fmt.Sprintf("%s/%s_%d_%d%s",
		prefix, stem, d.now().UnixMilli(), d.randInt(1_000_000), ext)
}
