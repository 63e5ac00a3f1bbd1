package livecookie

// secretUnwrapper is the host OS's per-user secret-protection facility, used
// to unwrap the browser's master key at rest. Unwrap failures are
// definitionally non-transient (wrong user, corrupted profile, missing OS
// support) and must never be retried; the attempt fails closed rather than
// substituting a fallback key.
type secretUnwrapper interface {
	unwrap(ciphertext []byte) ([]byte, error)
}

// newSecretUnwrapper is a test seam around the per-platform constructor.
var newSecretUnwrapper = platformSecretUnwrapper

// unsupportedUnwrapper is used on every platform without a per-user
// secret-protection facility.
type unsupportedUnwrapper struct{}

func (unsupportedUnwrapper) unwrap(_ []byte) ([]byte, error) {
	return nil, ErrPlatformUnsupported
}
