package livecookie

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1" //nolint:gosec // Chromium PBKDF2 uses SHA1 ("saltysalt", sha1) for legacy cookie encryption.
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	chromiumAESCBCSalt            = "saltysalt"
	chromiumAESCBCIV              = "                " // 16 spaces
	chromiumAESCBCIterationsLinux = 1
	chromiumAESCBCIterationsMacOS = 1003
	chromiumAESCBCKeyLen          = 16

	chromiumAESGCMNonceLen = 12
	chromiumAESGCMTagLen   = 16
)

// cookieCipher decrypts the encrypted_value column of a Chromium cookie
// store. key is the unwrapped 32-byte AEAD master key when the profile
// carries one; cbcKeys are the per-platform AES-CBC candidates for unix
// profiles; unwrap handles pre-versioned blobs protected directly by the OS.
type cookieCipher struct {
	key     []byte
	cbcKeys [][]byte
	unwrap  secretUnwrapper
}

// decrypt returns the plaintext cookie value, dispatching on the version
// tag. App-bound values (v20) are refused outright: the key for those is
// bound to the browser's own identity and cannot be unwrapped out of
// process.
func (c *cookieCipher) decrypt(encrypted []byte, metaVersion int64) (string, error) {
	if len(encrypted) == 0 {
		return "", nil
	}
	if len(encrypted) >= 3 && string(encrypted[:3]) == "v20" {
		return "", fmt.Errorf("%w: value uses app-bound encryption (v20); the key is held by the browser itself and can only be read over a live debugging session", ErrUnsupported)
	}
	if len(c.key) == 0 {
		return c.legacyDecode(encrypted, metaVersion)
	}
	if len(encrypted) < 3+chromiumAESGCMNonceLen {
		return "", fmt.Errorf("%w: %d bytes, need at least %d", ErrTooShort, len(encrypted), 3+chromiumAESGCMNonceLen)
	}
	if hasChromiumVersionPrefix(encrypted) {
		switch string(encrypted[:3]) {
		case "v10", "v11":
			return c.decryptAEAD(encrypted, metaVersion)
		}
	}
	// Unrecognized tag or no tag at all: decode the whole buffer the
	// pre-versioned way.
	return c.legacyDecode(encrypted, metaVersion)
}

func (c *cookieCipher) decryptAEAD(encrypted []byte, metaVersion int64) (string, error) {
	payload := encrypted[3:]
	if len(payload) < chromiumAESGCMNonceLen+chromiumAESGCMTagLen {
		return "", fmt.Errorf("%w: %d bytes, need at least %d (version tag, nonce, auth tag)",
			ErrTooShort, len(encrypted), 3+chromiumAESGCMNonceLen+chromiumAESGCMTagLen)
	}
	plain, err := chromiumDecryptAES256GCM(encrypted, c.key, metaVersion)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed (profile from a different user account, or a corrupted store): %v", ErrDecryptionFailed, err)
	}
	s, ok := chromiumDecodeCookieValue(plain)
	if !ok {
		return "", fmt.Errorf("%w: decrypted value is not valid UTF-8", ErrDecryptionFailed)
	}
	return s, nil
}

// legacyDecode handles values without an AEAD master key: unix v10/v11 CBC
// values, plaintext from pre-encryption profiles, and raw OS-protected
// blobs.
func (c *cookieCipher) legacyDecode(encrypted []byte, metaVersion int64) (string, error) {
	// Only v10/v11 values are CBC candidates; any other tag is decoded as a
	// whole buffer below.
	if len(encrypted) >= 3 {
		switch string(encrypted[:3]) {
		case "v10", "v11":
			for _, key := range c.cbcKeys {
				plain, err := chromiumDecryptAESCBC(encrypted, key, metaVersion, false)
				if err != nil {
					continue
				}
				if s, ok := chromiumDecodeCookieValue(plain); ok {
					return s, nil
				}
			}
			return "", fmt.Errorf("%w: no candidate key decrypted the value", ErrDecryptionFailed)
		}
	}

	if s, ok := printableCookieValue(encrypted); ok {
		return s, nil
	}
	if c.unwrap != nil {
		if plain, err := c.unwrap.unwrap(encrypted); err == nil {
			if s, ok := chromiumDecodeCookieValue(plain); ok {
				return s, nil
			}
		}
	}
	return "", fmt.Errorf("%w: unrecognized legacy value encoding", ErrDecryptionFailed)
}

func chromiumDeriveAESCBCKey(password string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), []byte(chromiumAESCBCSalt), iterations, chromiumAESCBCKeyLen, sha1.New)
}

func chromiumDecryptAESCBC(encrypted []byte, key []byte, metaVersion int64, treatUnknownPrefixAsPlaintext bool) ([]byte, error) {
	if len(encrypted) == 0 {
		return nil, errors.New("empty encrypted value")
	}
	if len(encrypted) <= 3 {
		return nil, fmt.Errorf("encrypted value too short (%d<=3)", len(encrypted))
	}

	if !hasChromiumVersionPrefix(encrypted) {
		if !treatUnknownPrefixAsPlaintext {
			return nil, errors.New("missing v## prefix")
		}
		plain := make([]byte, len(encrypted))
		copy(plain, encrypted)
		return plain, nil
	}

	ciphertext := encrypted[3:]
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("cipher input not full blocks")
	}

	out := make([]byte, len(ciphertext))
	cbc := cipher.NewCBCDecrypter(block, []byte(chromiumAESCBCIV))
	cbc.CryptBlocks(out, ciphertext)

	out, err = removePKCS7Padding(out)
	if err != nil {
		return nil, err
	}
	out = chromiumStripHashPrefix(out, metaVersion)
	return out, nil
}

func chromiumDecryptAES256GCM(encrypted []byte, key []byte, metaVersion int64) ([]byte, error) {
	if len(encrypted) < 3+chromiumAESGCMNonceLen+chromiumAESGCMTagLen {
		return nil, errors.New("encrypted value too short")
	}
	if !hasChromiumVersionPrefix(encrypted) {
		return nil, errors.New("missing v## prefix")
	}

	payload := encrypted[3:]
	nonce := payload[:chromiumAESGCMNonceLen]
	ciphertextAndTag := payload[chromiumAESGCMNonceLen:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	plain, err := aesgcm.Open(nil, nonce, ciphertextAndTag, nil)
	if err != nil {
		return nil, err
	}
	plain = chromiumStripHashPrefix(plain, metaVersion)
	return plain, nil
}

// Meta version 24 prepends a 32-byte SHA-256 of the host key to the
// plaintext.
func chromiumStripHashPrefix(plain []byte, metaVersion int64) []byte {
	if metaVersion >= 24 && len(plain) >= 32 {
		return plain[32:]
	}
	return plain
}

func hasChromiumVersionPrefix(b []byte) bool {
	if len(b) < 3 {
		return false
	}
	if b[0] != 'v' {
		return false
	}
	return isDigit(b[1]) && isDigit(b[2])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func removePKCS7Padding(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return b, nil
	}
	paddingLen := int(b[len(b)-1])
	if paddingLen <= 0 || paddingLen > aes.BlockSize || paddingLen > len(b) {
		return nil, fmt.Errorf("invalid padding length: %d", paddingLen)
	}
	for _, p := range b[len(b)-paddingLen:] {
		if int(p) != paddingLen {
			return nil, errors.New("invalid padding bytes")
		}
	}
	return b[:len(b)-paddingLen], nil
}

func chromiumDecodeCookieValue(b []byte) (string, bool) {
	b = stripLeadingControlBytes(b)
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// printableCookieValue accepts plaintext only when it looks like text; a raw
// OS-protected blob would otherwise pass through unmodified.
func printableCookieValue(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		return "", false
	}
	for _, r := range string(b) {
		if r < 0x20 && r != '\n' && r != '\t' {
			return "", false
		}
	}
	return string(b), true
}

func stripLeadingControlBytes(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] < 0x20 {
		i++
	}
	return bytes.Clone(b[i:])
}
