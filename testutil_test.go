package livecookie

import (
	"crypto/aes"
	"crypto/cipher"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=rwc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func pkcs7Pad(t *testing.T, b []byte) []byte {
	t.Helper()
	paddingLen := aes.BlockSize - (len(b) % aes.BlockSize)
	if paddingLen == 0 {
		paddingLen = aes.BlockSize
	}
	out := make([]byte, 0, len(b)+paddingLen)
	out = append(out, b...)
	for i := 0; i < paddingLen; i++ {
		out = append(out, byte(paddingLen))
	}
	return out
}

func encryptAESCBCForTest(t *testing.T, prefix string, key []byte, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	iv := []byte(chromiumAESCBCIV)
	padded := pkcs7Pad(t, plaintext)
	ciphertext := make([]byte, len(padded))
	cbc := cipher.NewCBCEncrypter(block, iv)
	cbc.CryptBlocks(ciphertext, padded)
	return append([]byte(prefix), ciphertext...)
}

func encryptAESGCMForTest(t *testing.T, prefix string, key []byte, nonce []byte, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatal(err)
	}
	ciphertextAndTag := aesgcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(prefix)+len(nonce)+len(ciphertextAndTag))
	out = append(out, []byte(prefix)...)
	out = append(out, nonce...)
	out = append(out, ciphertextAndTag...)
	return out
}

// spyUnwrapper records whether unwrap was ever called.
type spyUnwrapper struct {
	called bool
	out    []byte
	err    error
}

func (s *spyUnwrapper) unwrap(_ []byte) ([]byte, error) {
	s.called = true
	return s.out, s.err
}

func writeTestCookiesDB(t *testing.T, path string, metaVersion int64, rows []chromiumCookieRow) {
	t.Helper()
	db := openTestSQLite(t, path)

	stmts := []string{
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT)`,
		`CREATE TABLE cookies (
			host_key TEXT, name TEXT, path TEXT, value TEXT,
			encrypted_value BLOB, expires_utc INTEGER,
			is_secure INTEGER, is_httponly INTEGER, samesite INTEGER
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES ('version', ?)`, metaVersion); err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		_, err := db.Exec(
			`INSERT INTO cookies (host_key, name, path, value, encrypted_value, expires_utc, is_secure, is_httponly, samesite)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.hostKey, r.name, r.path, r.value, r.encryptedValue, r.expiresUTC,
			boolToInt(r.isSecure), boolToInt(r.isHTTPOnly), r.sameSite,
		)
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
