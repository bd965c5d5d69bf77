// Package security hashes and verifies account passwords with Argon2id.
// The encoded form follows the PHC string convention so hashes stay
// verifiable if the tuning parameters change later.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/Max3uc3Planz/lcdt-back/pkg/config"
)

// ErrInvalidHash signals an encoded hash that does not parse as Argon2id.
var ErrInvalidHash = errors.New("invalid argon2id hash")

type argonSettings struct {
	memoryKB    uint32
	passes      uint32
	parallelism uint8
	saltLen     uint32
	keyLen      uint32
}

// settingsFrom clamps the configured values into sane Argon2id ranges so a
// typo in the environment cannot produce a trivially weak or OOM-inducing
// hash.
func settingsFrom(cfg config.PasswordConfig) argonSettings {
	return argonSettings{
		memoryKB:    uint32(bounded(cfg.ArgonMemoryKB, 8, 512*1024)),
		passes:      uint32(bounded(cfg.ArgonTime, 1, 10)),
		parallelism: uint8(bounded(cfg.ArgonParallelism, 1, 255)),
		saltLen:     uint32(bounded(cfg.ArgonSaltLen, 8, 64)),
		keyLen:      uint32(bounded(cfg.ArgonKeyLen, 16, 64)),
	}
}

func bounded(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HashPassword derives an Argon2id hash of password and returns it in
// encoded PHC form, salt included.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	s := settingsFrom(cfg)
	salt := make([]byte, s.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, s.passes, s.memoryKB, s.parallelism, s.keyLen)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		s.memoryKB, s.passes, s.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the encoded hash. The
// comparison is constant-time; a false return with a nil error means the
// password is simply wrong.
func VerifyPassword(password, encoded string) (bool, error) {
	s, salt, want, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, s.passes, s.memoryKB, s.parallelism, s.keyLen)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

func parseHash(encoded string) (argonSettings, []byte, []byte, error) {
	var zero argonSettings

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return zero, nil, nil, ErrInvalidHash
	}

	var s argonSettings
	n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &s.memoryKB, &s.passes, &s.parallelism)
	if err != nil || n != 3 {
		return zero, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return zero, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return zero, nil, nil, ErrInvalidHash
	}

	s.saltLen = uint32(len(salt))
	s.keyLen = uint32(len(key))
	return s, salt, key, nil
}
