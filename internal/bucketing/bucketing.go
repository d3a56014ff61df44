// Package bucketing implements the deterministic percentage-rollout
// bucketing function shared between the server and every SDK: the same
// (flag_key, user_id) pair must always map to the same bucket, in every
// process, forever, because clients may compute it independently for
// caching.
package bucketing

import "github.com/twmb/murmur3"

// separator is inserted between the flag key and the user id before
// hashing. It is part of the wire contract; changing it changes every
// bucket assignment in existence.
const separator = byte(0x3A)

// Bucket computes b in [0,100) for the given flag key and user id.
//
// An empty user id is the documented "anonymous" case and always buckets
// to 0; combined with the evaluation service's rollout<100 rule this means
// anonymous users only ever see a flag when its rollout is 100.
func Bucket(flagKey, userID string) int {
	if userID == "" {
		return 0
	}

	buf := make([]byte, 0, len(flagKey)+1+len(userID))
	buf = append(buf, flagKey...)
	buf = append(buf, separator)
	buf = append(buf, userID...)

	hi, lo := murmur3.Sum128(buf)
	_ = hi

	return int(lo % 100)
}

// EnabledForUser reports whether a user falls inside the rollout for a
// flag. The comparison against rollout is the only place the monotonicity
// property is enforced: raising rollout can only turn disabled users
// enabled, never the reverse, because the bucket itself never changes.
func EnabledForUser(flagKey, userID string, rolloutPercentage int) bool {
	return Bucket(flagKey, userID) < rolloutPercentage
}
