package auth

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/cryptox"
)

// FileStore keeps credentials in memory and mirrors them to a line-oriented
// text file: one `username:salt_hex:verifier_hex` record per line, blank
// lines and `#` comments ignored. The file is rewritten atomically after
// every successful registration and on Flush.
type FileStore struct {
	path  string
	mu    sync.RWMutex
	creds map[string]*Credential
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, creds: make(map[string]*Credential)}
}

// Load reads the store file. A missing file is not an error: the store
// starts empty. Malformed lines are skipped, never fatal; Load reports how
// many were dropped so the caller can log it.
func (s *FileStore) Load() (int, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open credential store: %w", err)
	}
	defer f.Close()

	creds := make(map[string]*Credential)
	skipped := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cred, err := parseRecord(line)
		if err != nil {
			skipped++
			continue
		}
		creds[cred.Username] = cred
	}
	if err := scanner.Err(); err != nil {
		return skipped, fmt.Errorf("read credential store: %w", err)
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return skipped, nil
}

func parseRecord(line string) (*Credential, error) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return nil, fmt.Errorf("malformed record")
	}

	// hex is decoded verbatim: leading zero bytes in the verifier survive
	// the roundtrip
	salt, err := cryptox.HexToBytes(parts[1])
	if err != nil {
		return nil, fmt.Errorf("bad salt: %w", err)
	}
	verifier, err := cryptox.HexToBytes(parts[2])
	if err != nil {
		return nil, fmt.Errorf("bad verifier: %w", err)
	}

	return &Credential{Username: parts[0], Salt: salt, Verifier: verifier}, nil
}

func (s *FileStore) Get(_ context.Context, username string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[username]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	c := *cred
	return &c, nil
}

func (s *FileStore) Put(_ context.Context, cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds[cred.Username]; ok {
		return common.ErrUserAlreadyExists
	}
	c := *cred
	s.creds[cred.Username] = &c

	return s.saveLocked()
}

// Flush rewrites the store file.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// Count reports the number of stored credentials.
func (s *FileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.creds)
}

// saveLocked writes all records to a temp file in the store's directory and
// renames it over the target, so readers never observe a partial file.
func (s *FileStore) saveLocked() error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	fmt.Fprintln(w, "# SRP User Database")
	fmt.Fprintln(w, "# Format: username:salt_hex:verifier_hex")

	names := make([]string, 0, len(s.creds))
	for name := range s.creds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cred := s.creds[name]
		fmt.Fprintf(w, "%s:%s:%s\n",
			cred.Username,
			cryptox.BytesToHex(cred.Salt),
			cryptox.BytesToHex(cred.Verifier))
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential store: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace credential store: %w", err)
	}
	return nil
}
