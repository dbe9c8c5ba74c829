package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"gamingrealm-backend/src/internal/config"
	"gamingrealm-backend/src/internal/models"

	"golang.org/x/crypto/argon2"
)

const algorithmID = "argon2id"

// Hasher derives and verifies argon2id password hashes. Cost parameters come
// from configuration so that login latency is a deployment choice, not a
// hard-coded constant. Hashes are self-describing PHC strings; verification
// uses the parameters embedded in the hash, never the hasher's own.
type Hasher struct {
	time        uint32
	memory      uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

func NewHasher(cfg *config.Argon2Settings) *Hasher {
	return &Hasher{
		time:        cfg.Time,
		memory:      cfg.MemoryKB,
		parallelism: cfg.Parallelism,
		saltLength:  cfg.SaltLength,
		keyLength:   cfg.KeyLength,
	}
}

// Hash returns a PHC-encoded argon2id hash of password, e.g.
// $argon2id$v=19$m=16384,t=4,p=1$<salt>$<digest>.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	digest := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.parallelism, h.keyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.memory,
		h.time,
		h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify reports whether password matches the PHC-encoded hash. A malformed
// hash string fails with models.ErrCredentialFormat; a mismatched password
// is (false, nil), never an error.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	params, salt, digest, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		params.time,
		params.memory,
		params.parallelism,
		uint32(len(digest)),
	)

	return subtle.ConstantTimeCompare(computed, digest) == 1, nil
}

type phcParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
}

func parsePHC(encodedHash string) (*phcParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return nil, nil, nil, models.ErrCredentialFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, nil, models.ErrCredentialFormat
	}

	var params phcParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.memory, &params.time, &params.parallelism); err != nil {
		return nil, nil, nil, models.ErrCredentialFormat
	}
	if params.memory == 0 || params.time == 0 || params.parallelism == 0 {
		return nil, nil, nil, models.ErrCredentialFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, nil, nil, models.ErrCredentialFormat
	}

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return nil, nil, nil, models.ErrCredentialFormat
	}

	return &params, salt, digest, nil
}
