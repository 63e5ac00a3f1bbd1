package livecookie

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
)

// Wrapped master keys are prefixed with the name of the facility that
// protected them.
const dpapiKeyPrefix = "DPAPI"

// newCookieCipher builds the cipher for a profile from its Local State
// file plus the platform key material.
func newCookieCipher(vendor chromiumVendor, userDataDir string, timeout time.Duration) (*cookieCipher, []string, error) {
	unwrap := newSecretUnwrapper()
	cbcKeys, warnings := safeStorageCBCKeys(vendor, timeout)

	key, err := readMasterKey(filepath.Join(userDataDir, "Local State"), unwrap)
	if err != nil {
		return nil, warnings, err
	}
	return &cookieCipher{key: key, cbcKeys: cbcKeys, unwrap: unwrap}, warnings, nil
}

// readMasterKey extracts and unwraps the AEAD master key from Local State.
// A missing file or missing os_crypt.encrypted_key field means a legacy
// profile and yields a nil key without error. A profile carrying
// os_crypt.app_bound_encrypted_key is refused before any unwrap attempt:
// that key is bound to the browser's own identity and unwrapping it out of
// process can never succeed.
func readMasterKey(localStatePath string, unwrap secretUnwrapper) ([]byte, error) {
	raw, err := os.ReadFile(localStatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", localStatePath, err)
	}

	if gjson.GetBytes(raw, "os_crypt.app_bound_encrypted_key").Exists() {
		return nil, fmt.Errorf("%w: profile uses app-bound encryption; read cookies over a live debugging session instead", ErrUnsupported)
	}

	enc := gjson.GetBytes(raw, "os_crypt.encrypted_key")
	if !enc.Exists() || enc.String() == "" {
		return nil, nil
	}

	wrapped, err := base64.StdEncoding.DecodeString(enc.String())
	if err != nil {
		return nil, fmt.Errorf("%w: os_crypt.encrypted_key is not valid base64: %v", ErrDecryptionFailed, err)
	}
	if len(wrapped) <= len(dpapiKeyPrefix) || string(wrapped[:len(dpapiKeyPrefix)]) != dpapiKeyPrefix {
		return nil, fmt.Errorf("%w: os_crypt.encrypted_key missing %s prefix", ErrDecryptionFailed, dpapiKeyPrefix)
	}

	key, err := unwrap.unwrap(wrapped[len(dpapiKeyPrefix):])
	if err != nil {
		return nil, fmt.Errorf("unwrap master key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: unwrapped master key is %d bytes, want 32", ErrDecryptionFailed, len(key))
	}
	return key, nil
}
