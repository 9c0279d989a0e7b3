package arena

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// SeedFromPhrase turns a human-readable phrase into a root seed.
func SeedFromPhrase(phrase string) int64 {
	return nonZero(xxhash.Sum64String(phrase))
}

// SubsystemSeed derives the seed of one labelled stream from the root seed.
func SubsystemSeed(root int64, label string) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(root))
	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(label)
	return nonZero(d.Sum64())
}

func nonZero(sum uint64) int64 {
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}
