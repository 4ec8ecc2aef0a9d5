package validation

import (
	"encoding/binary"
	"math/big"
	"sort"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/merkle"
)

// Select picks k distinct validators out of eligible using a seeded
// partial Fisher-Yates shuffle, so anyone holding the same inputs gets the
// same result:
//
//  1. copy eligible and sort it ascending (byte order of the hex keys);
//  2. for i = 0..k-1, let r = keccak256(seed || uint64be(i)) read as a
//     big-endian unsigned integer, j = i + (r mod (n-i)), swap entries i
//     and j;
//  3. the first k entries, in that order, are the selection.
func Select(eligible []domain.Address, seed merkle.Hash, k int) ([]domain.Address, error) {
	n := len(eligible)
	if k <= 0 || n < k {
		return nil, domain.Fail("select", domain.ErrNotEnoughValidators, "%d eligible, %d wanted", n, k)
	}
	pool := make([]domain.Address, n)
	copy(pool, eligible)
	sort.Slice(pool, func(a, b int) bool { return pool[a] < pool[b] })

	var (
		idx [8]byte
		r   big.Int
		m   big.Int
	)
	for i := 0; i < k; i++ {
		binary.BigEndian.PutUint64(idx[:], uint64(i))
		h := merkle.Keccak(seed[:], idx[:])
		r.SetBytes(h[:])
		m.SetInt64(int64(n - i))
		j := i + int(new(big.Int).Mod(&r, &m).Int64())
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k], nil
}

// CommitHash is keccak256(vote || salt) with vote encoded as one byte, 1
// for approve and 0 for reject.
func CommitHash(approve bool, salt [32]byte) merkle.Hash {
	vote := []byte{0}
	if approve {
		vote[0] = 1
	}
	return merkle.Keccak(vote, salt[:])
}
