// Package secrets keeps the wallet signing key and the OAuth client secret
// out of the config file. Values live in a 0600 JSON file sealed with
// AES-GCM under a per-user key. It is not a keychain, only a way to avoid
// plain text on disk.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

const fileName = "secrets.json"

// Well-known entry names.
const (
	WalletKey   = "wallet"
	OAuthSecret = "oauth"
)

// ErrNotFound is returned by Get for a name that was never stored.
var ErrNotFound = errors.New("secret not found")

type secretFile struct {
	Entries map[string]string `json:"entries"` // name -> base64(nonce|ciphertext)
}

// Store is a sealed secrets file in one directory.
type Store struct {
	path string
}

// Open uses dir, creating it with owner-only permissions.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir secrets dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, fileName)}, nil
}

// Default opens the store under the user config directory.
func Default() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, "oryo"))
}

func (s *Store) Put(name, value string) error {
	if name = norm(name); name == "" {
		return errors.New("secret name required")
	}
	sf, err := s.load()
	if err != nil {
		return err
	}
	if sf.Entries == nil {
		sf.Entries = map[string]string{}
	}
	ct, err := seal([]byte(value))
	if err != nil {
		return err
	}
	sf.Entries[name] = base64.StdEncoding.EncodeToString(ct)
	return s.save(sf)
}

func (s *Store) Get(name string) (string, error) {
	sf, err := s.load()
	if err != nil {
		return "", err
	}
	enc, ok := sf.Entries[norm(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	pt, err := open(raw)
	if err != nil {
		return "", fmt.Errorf("unseal %s: %w", name, err)
	}
	return string(pt), nil
}

func (s *Store) Delete(name string) error {
	sf, err := s.load()
	if err != nil {
		return err
	}
	delete(sf.Entries, norm(name))
	return s.save(sf)
}

// Lookup returns the value of env if set, else the stored entry, else "".
// A nil store only consults the environment.
func Lookup(s *Store, env, name string) string {
	if env = strings.TrimSpace(env); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if s == nil {
		return ""
	}
	v, err := s.Get(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

func (s *Store) load() (secretFile, error) {
	var sf secretFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return secretFile{}, nil
		}
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return sf, nil
}

func (s *Store) save(sf secretFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() []byte {
	return crypto.Keccak256([]byte(fmt.Sprintf("oryo-%s-%s", runtime.GOOS, os.Getenv("USER"))))
}

func seal(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func open(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
