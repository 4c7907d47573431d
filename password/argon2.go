package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// Hashing parameters. Fixed at build time so every stored hash encodes the
// same cost profile; the PHC string still carries them for forward
// compatibility with future parameter bumps.
const (
	memoryKB    uint32 = 64 * 1024
	timeCost    uint32 = 3
	parallelism uint8  = 1
	saltLength         = 16
	keyLength   uint32 = 32
)

// Hash derives an argon2id hash of the password and returns it in PHC
// string format ($argon2id$v=19$m=...,t=...,p=...$salt$hash).
func Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "password.Hash rand.Read")
	}

	key := argon2.IDKey([]byte(password), salt, timeCost, memoryKB, parallelism, keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		memoryKB,
		timeCost,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether the plaintext password matches the PHC-encoded
// hash. The comparison is constant time over the derived key.
func Verify(password, encoded string) (bool, error) {
	memory, time, threads, salt, hash, err := decode(encoded)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(key, hash) == 1, nil
}

func decode(encoded string) (memory, time uint32, threads uint8, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, errors.New("invalid password hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, errors.New("invalid password hash version")
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, errors.New("unsupported password hash version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return 0, 0, 0, nil, nil, errors.New("invalid password hash parameters")
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, errors.New("invalid password hash salt")
	}

	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, errors.New("invalid password hash key")
	}

	return memory, time, threads, salt, hash, nil
}
