// Package password hashes and verifies account passwords using Argon2id in
// the standard encoded form:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<base64 salt>$<base64 key>
//
// Every call to Hash draws a fresh random salt, so equal passwords never
// produce equal strings; equality is only decidable through Verify.
package password

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/avelichko/formdesk/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltLen = 16
	keyLen  = 32

	timeCost    = 1
	memoryCost  = 64 * 1024
	parallelism = 4
)

// Hash derives an Argon2id key from password under a fresh random salt and
// returns the encoded hash string.
func Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(saltLen)

	key := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memoryCost, timeCost, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))

	return encoded, nil
}

// Verify reports whether password matches the encoded hash. The comparison
// is constant time over the derived keys. Malformed or unknown-format input
// is treated as a verification failure, never an error.
func Verify(password, encoded string) bool {
	salt, key, t, m, p, err := decode(encoded)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decode(encoded string) (salt, key []byte, t, m uint32, p uint8, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, fmt.Errorf("unsupported hash format")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, err
	}
	if version != argon2.Version {
		return nil, nil, 0, 0, 0, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return nil, nil, 0, 0, 0, err
	}
	if m == 0 || t == 0 || p == 0 {
		return nil, nil, 0, 0, 0, fmt.Errorf("invalid argon2 parameters")
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, err
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, 0, 0, 0, fmt.Errorf("invalid key block")
	}

	return salt, key, t, m, p, nil
}
