// Package cbc chains the block primitive into CBC mode one block at a
// time. Callers own block framing: each step must run exactly once per
// block, in stream order, or every following block comes out corrupt.
package cbc

import "github.com/leifwalsh/tea/cipher"

// ChainState holds the chaining value. It always equals the most
// recently produced ciphertext block, seeded from the IV. Each stream
// direction gets its own instance; nothing here is shared or global.
type ChainState struct {
	prev cipher.Block
}

// New returns a ChainState seeded with iv.
func New(iv cipher.Block) *ChainState {
	return &ChainState{prev: iv}
}

// EncryptStep encrypts one plaintext block and advances the chain.
func (s *ChainState) EncryptStep(key cipher.Key, pt cipher.Block) cipher.Block {
	pt[0] ^= s.prev[0]
	pt[1] ^= s.prev[1]
	s.prev = cipher.Encipher(key, pt)
	return s.prev
}

// DecryptStep decrypts one ciphertext block and advances the chain.
// The chain keeps the ciphertext as received, not the decrypted
// output.
func (s *ChainState) DecryptStep(key cipher.Key, ct cipher.Block) cipher.Block {
	pt := cipher.Decipher(key, ct)
	pt[0] ^= s.prev[0]
	pt[1] ^= s.prev[1]
	s.prev = ct
	return pt
}
