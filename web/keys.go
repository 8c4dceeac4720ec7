package web

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// deriveKeys expands the configured secret into independent signing and
// encryption keys for the session store.
func deriveKeys(secret []byte) (hashKey, blockKey []byte) {
	hashKey = make([]byte, 64)
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte("folio session signing")), hashKey); err != nil {
		panic(err)
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte("folio session encryption")), blockKey); err != nil {
		panic(err)
	}
	return hashKey, blockKey
}
