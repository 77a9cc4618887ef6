// Package cipher implements the XTEA block cipher
// (https://en.wikipedia.org/wiki/XTEA): 64-bit blocks under a 128-bit
// key, 32 Feistel-style rounds. These routines only deal with a single
// block at a time; chaining and streaming live in the cbc and stream
// packages.
package cipher

// Key is a 128-bit key, four 32-bit words. Keys are plain values and
// are never mutated by this package.
type Key [4]uint32

// Block is the cipher's native 64-bit unit, two 32-bit words.
type Block [2]uint32

const (
	// BlockSize is the byte length of one Block.
	BlockSize = 8
	// KeySize is the byte length of a Key.
	KeySize = 16

	delta     = 0x9E3779B9
	numRounds = 32
)

// Encipher encrypts one block with key. All arithmetic wraps modulo
// 2^32 and every input bit pattern is valid, so there is no error
// path.
func Encipher(key Key, in Block) Block {
	v0, v1 := in[0], in[1]
	var sum uint32
	for i := 0; i < numRounds; i++ {
		v0 += (((v1 << 4) ^ (v1 >> 5)) + v1) ^ (sum + key[sum&3])
		sum += delta
		v1 += (((v0 << 4) ^ (v0 >> 5)) + v0) ^ (sum + key[(sum>>11)&3])
	}
	return Block{v0, v1}
}

// Decipher inverts Encipher: Decipher(k, Encipher(k, b)) == b for
// every key and block. The round sum runs backward from delta*32.
func Decipher(key Key, in Block) Block {
	v0, v1 := in[0], in[1]
	sum := uint32(0xC6EF3720) // delta * numRounds, wrapped
	for i := 0; i < numRounds; i++ {
		v1 -= (((v0 << 4) ^ (v0 >> 5)) + v0) ^ (sum + key[(sum>>11)&3])
		sum -= delta
		v0 -= (((v1 << 4) ^ (v1 >> 5)) + v1) ^ (sum + key[sum&3])
	}
	return Block{v0, v1}
}
