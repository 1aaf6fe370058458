package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"webagent/internal/application/port/output"
	"webagent/internal/domain/entity"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

var _ output.CredentialPort = (*Store)(nil)

const (
	kdfIterations = 100_000
	keyLen        = 32
	saltLen       = 16
)

// Store keeps per-site credentials encrypted with AES-256-GCM on disk. The
// key is derived from a passphrase with PBKDF2 and a per-record salt. The
// core loop only ever sees the opaque handle.
type Store struct {
	mu         sync.Mutex
	path       string
	passphrase string
}

type record struct {
	Handle     string `json:"handle"`
	Site       string `json:"site"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

type secret struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewStore(path, passphrase string) *Store {
	return &Store{path: path, passphrase: passphrase}
}

// Save encrypts and persists credentials for a site, returning the opaque
// handle that login steps reference. Saving again for the same site
// replaces the record and issues a new handle.
func (s *Store) Save(site, username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return "", err
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := s.cipher(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	plaintext, err := json.Marshal(secret{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("marshal secret: %w", err)
	}

	handle := uuid.NewString()
	records[site] = record{
		Handle:     handle,
		Site:       site,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, nil)),
	}

	if err := s.persist(records); err != nil {
		return "", err
	}
	return handle, nil
}

// Handle returns the handle stored for a site without decrypting anything.
func (s *Store) Handle(site string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return "", err
	}
	rec, ok := records[site]
	if !ok {
		return "", fmt.Errorf("no credentials stored for %q", site)
	}
	return rec.Handle, nil
}

// Resolve decrypts the credentials behind a handle. Implements the
// CredentialPort the executor consumes.
func (s *Store) Resolve(handle string) (*entity.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec.Handle != handle {
			continue
		}
		return s.decrypt(rec)
	}
	return nil, fmt.Errorf("unknown credential handle")
}

func (s *Store) decrypt(rec record) (*entity.Credentials, error) {
	salt, err := base64.StdEncoding.DecodeString(rec.Salt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(rec.Nonce)
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(rec.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	gcm, err := s.cipher(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt credentials: %w", err)
	}

	var sec secret
	if err := json.Unmarshal(plaintext, &sec); err != nil {
		return nil, fmt.Errorf("unmarshal secret: %w", err)
	}

	return &entity.Credentials{
		Site:     rec.Site,
		Username: sec.Username,
		Password: sec.Password,
	}, nil
}

func (s *Store) cipher(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(s.passphrase), salt, kdfIterations, keyLen, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

func (s *Store) load() (map[string]record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]record), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential store: %w", err)
	}

	records := make(map[string]record)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse credential store: %w", err)
	}
	return records, nil
}

func (s *Store) persist(records map[string]record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credential store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write credential store: %w", err)
	}
	return nil
}
