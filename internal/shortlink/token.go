package shortlink

import "github.com/jaevor/go-nanoid"

const hexAlphabet = "0123456789abcdef"

// TokenGenerator produces opaque shortlink tokens.
type TokenGenerator func() string

// NewHexTokenGenerator returns a generator producing fixed-length lowercase
// hex tokens with byteLen bytes of entropy (2*byteLen characters). The
// generator draws from a cryptographically strong source; it makes no
// uniqueness guarantee beyond entropy.
func NewHexTokenGenerator(byteLen int) (TokenGenerator, error) {
	gen, err := nanoid.CustomASCII(hexAlphabet, 2*byteLen)
	if err != nil {
		return nil, err
	}

	return TokenGenerator(gen), nil
}
