package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Verify(plain, hash string) bool
}

// PasswordVerifierFunc adapts a function to PasswordVerifier.
type PasswordVerifierFunc func(plain, hash string) bool

// Verify implements PasswordVerifier.
func (f PasswordVerifierFunc) Verify(plain, hash string) bool {
	if f == nil {
		return false
	}
	return f(plain, hash)
}

// Argon2Hasher hashes passwords with Argon2id, encoded in PHC format:
// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultArgon2Hasher uses the OWASP recommended parameters.
func DefaultArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{
		Time:    3,
		Memory:  64 * 1024,
		Threads: 1,
		KeyLen:  32,
		SaltLen: 16,
	}
}

func (a Argon2Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	salt := make([]byte, a.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, a.Time, a.Memory, a.Threads, a.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.Memory, a.Time, a.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify implements PasswordVerifier. Parameters are read from the hash, not
// from the receiver.
func (a Argon2Hasher) Verify(password, encoded string) bool {
	salt, hash, params, err := decodeArgon2PHC(encoded)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}

type argon2Params struct {
	time    uint32
	memory  uint32
	threads uint8
}

func decodeArgon2PHC(encoded string) (salt, hash []byte, params argon2Params, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, nil, params, fmt.Errorf("invalid PHC hash format")
	}

	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, fmt.Errorf("parsing version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, params, fmt.Errorf("unsupported argon2 version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return nil, nil, params, fmt.Errorf("parsing parameters: %w", err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, params, fmt.Errorf("decoding salt: %w", err)
	}

	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, params, fmt.Errorf("decoding hash: %w", err)
	}

	if len(hash) == 0 {
		return nil, nil, params, fmt.Errorf("empty hash")
	}

	return salt, hash, params, nil
}

// MultiVerifier picks the verifier matching the hash scheme. Unknown
// schemes never verify.
type MultiVerifier struct {
	Bcrypt PasswordVerifier
	Argon2 PasswordVerifier
}

// NewMultiVerifier returns a MultiVerifier for bcrypt and argon2id hashes.
func NewMultiVerifier() MultiVerifier {
	return MultiVerifier{
		Bcrypt: BcryptHasher{},
		Argon2: DefaultArgon2Hasher(),
	}
}

// Verify implements PasswordVerifier.
func (m MultiVerifier) Verify(plain, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return m.Argon2 != nil && m.Argon2.Verify(plain, hash)
	case strings.HasPrefix(hash, "$2a$"),
		strings.HasPrefix(hash, "$2b$"),
		strings.HasPrefix(hash, "$2y$"):
		return m.Bcrypt != nil && m.Bcrypt.Verify(plain, hash)
	default:
		return false
	}
}
