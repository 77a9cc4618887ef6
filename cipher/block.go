package cipher

import (
	"encoding/binary"
	"strconv"
)

// KeySizeError is returned when key material is not KeySize bytes.
type KeySizeError int

func (k KeySizeError) Error() string {
	return "tea: invalid key size " + strconv.Itoa(int(k))
}

// IVSizeError is returned when an IV is not BlockSize bytes.
type IVSizeError int

func (i IVSizeError) Error() string {
	return "tea: invalid IV size " + strconv.Itoa(int(i))
}

// LoadBlock unpacks the first 8 bytes of p into a Block. The word
// order is fixed little-endian, so ciphertext never depends on the
// host's memory layout.
func LoadBlock(p []byte) Block {
	return Block{
		binary.LittleEndian.Uint32(p[0:4]),
		binary.LittleEndian.Uint32(p[4:8]),
	}
}

// StoreBlock packs b into the first 8 bytes of dst, little-endian.
func StoreBlock(dst []byte, b Block) {
	binary.LittleEndian.PutUint32(dst[0:4], b[0])
	binary.LittleEndian.PutUint32(dst[4:8], b[1])
}

// KeyFromBytes builds a Key from exactly KeySize bytes, little-endian
// word order.
func KeyFromBytes(p []byte) (Key, error) {
	if len(p) != KeySize {
		return Key{}, KeySizeError(len(p))
	}
	var k Key
	for i := range k {
		k[i] = binary.LittleEndian.Uint32(p[4*i:])
	}
	return k, nil
}

// IVFromBytes builds a chaining seed from exactly BlockSize bytes.
func IVFromBytes(p []byte) (Block, error) {
	if len(p) != BlockSize {
		return Block{}, IVSizeError(len(p))
	}
	return LoadBlock(p), nil
}
