package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

// HashParams are the argon2id cost parameters used when hashing new passwords.
type HashParams struct {
	Memory      uint32 `yaml:"memory_kb"`
	Time        uint32 `yaml:"time"`
	Parallelism uint8  `yaml:"parallelism"`
	SaltLength  uint32 `yaml:"salt_length"`
	KeyLength   uint32 `yaml:"key_length"`
}

// DefaultHashParams returns the recommended interactive-login parameters.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Validate enforces the minimum cost parameters.
func (p HashParams) Validate() error {
	if p.Memory < minMemoryKB {
		return errors.New("argon2 memory must be >= 8192 KB")
	}
	if p.Time < minTimeCost {
		return errors.New("argon2 time must be >= 1")
	}
	if p.Parallelism < minParallelism {
		return errors.New("argon2 parallelism must be >= 1")
	}
	if p.SaltLength < minSaltLength {
		return errors.New("argon2 salt length must be >= 16")
	}
	if p.KeyLength < minKeyLength {
		return errors.New("argon2 key length must be >= 16")
	}
	return nil
}

// HashPassword returns the PHC string for password under p.
func HashPassword(password string, p HashParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if password == "" {
		return "", errors.New("password must not be empty")
	}

	salt := make([]byte, p.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		p.Memory,
		p.Time,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the PHC string encoded.
// Comparison is constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	phc, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(password), phc.salt, phc.params.Time, phc.params.Memory, phc.params.Parallelism, uint32(len(phc.key)))
	return subtle.ConstantTimeCompare(key, phc.key) == 1, nil
}

type parsedPHC struct {
	params HashParams
	salt   []byte
	key    []byte
}

// parsePHC reads "$argon2id$v=19$m=..,t=..,p=..$salt$key". Both padded and
// unpadded base64 are accepted.
func parsePHC(encoded string) (parsedPHC, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return parsedPHC{}, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return parsedPHC{}, errors.New("unsupported algorithm")
	}
	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") {
		return parsedPHC{}, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return parsedPHC{}, errors.New("unsupported argon2 version")
	}

	var out parsedPHC
	if err := parseCost(parts[3], &out.params); err != nil {
		return parsedPHC{}, err
	}
	if out.salt, err = decodeB64(parts[4]); err != nil || len(out.salt) < int(minSaltLength) {
		return parsedPHC{}, errors.New("invalid salt")
	}
	if out.key, err = decodeB64(parts[5]); err != nil || len(out.key) == 0 {
		return parsedPHC{}, errors.New("invalid hash")
	}
	return out, nil
}

func parseCost(part string, p *HashParams) error {
	seen := 0
	for _, pair := range strings.Split(part, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return errors.New("invalid parameter entry")
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %s parameter", k)
		}
		switch k {
		case "m":
			if n < uint64(minMemoryKB) {
				return errors.New("invalid memory parameter")
			}
			p.Memory = uint32(n)
		case "t":
			if n < uint64(minTimeCost) {
				return errors.New("invalid time parameter")
			}
			p.Time = uint32(n)
		case "p":
			if n < uint64(minParallelism) || n > 255 {
				return errors.New("invalid parallelism parameter")
			}
			p.Parallelism = uint8(n)
		default:
			return errors.New("unsupported parameter")
		}
		seen++
	}
	if seen != 3 {
		return errors.New("missing parameters")
	}
	return nil
}

func decodeB64(s string) ([]byte, error) {
	if strings.HasSuffix(s, "=") {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}
