//go:build windows

package livecookie

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

func platformSecretUnwrapper() secretUnwrapper { return dpapiUnwrapper{} }

// dpapiUnwrapper unwraps data protected with the current user's DPAPI scope.
type dpapiUnwrapper struct{}

func (dpapiUnwrapper) unwrap(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, errors.New("empty dpapi input")
	}

	var outBlob dataBlob
	if err := cryptUnprotectData(newBlob(ciphertext), &outBlob); err != nil {
		return nil, fmt.Errorf("dpapi unwrap failed (profile from a different user account, or corrupted): %w", err)
	}
	defer func() {
		_, _ = windows.LocalFree(windows.Handle(unsafe.Pointer(outBlob.pbData))) //nolint:gosec // Windows API requires this.
	}()
	return outBlob.bytes(), nil
}

type dataBlob struct {
	cbData uint32
	pbData *byte
}

func newBlob(d []byte) *dataBlob {
	if len(d) == 0 {
		return &dataBlob{}
	}
	return &dataBlob{pbData: &d[0], cbData: uint32(len(d))}
}

func (b *dataBlob) bytes() []byte {
	if b == nil || b.cbData == 0 || b.pbData == nil {
		return nil
	}
	out := make([]byte, b.cbData)
	copy(out, (*[1 << 30]byte)(unsafe.Pointer(b.pbData))[:b.cbData:b.cbData])
	return out
}

func cryptUnprotectData(in *dataBlob, out *dataBlob) error {
	// windows.CryptUnprotectData wrapper in x/sys is awkward for raw blobs; call proc directly.
	dll := windows.NewLazySystemDLL("Crypt32.dll")
	proc := dll.NewProc("CryptUnprotectData")
	const cryptprotectUIForbidden = 0x1
	r, _, e := proc.Call(
		uintptr(unsafe.Pointer(in)),
		0,
		0,
		0,
		0,
		cryptprotectUIForbidden,
		uintptr(unsafe.Pointer(out)),
	)
	if r == 0 {
		return e
	}
	return nil
}

// Windows profiles carry a DPAPI-wrapped AEAD master key; the unix CBC
// scheme does not apply.
func safeStorageCBCKeys(_ chromiumVendor, _ time.Duration) ([][]byte, []string) {
	return nil, nil
}
