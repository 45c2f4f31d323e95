package stream

import (
	"bufio"
	"crypto/sha1" //nolint:gosec // kdb+'s credential file format mandates sha1, not a choice made here
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/kdbgo/qipc/errs"
)

// Credential is a client-side username/password pair presented during the
// connect handshake (§6).
type Credential struct {
	User     string
	Password string
}

// wireString renders the credential as the "user:password" string the
// handshake writes before the capability byte.
func (c Credential) wireString() string {
	return c.User + ":" + c.Password
}

// HashPassword returns the hex-encoded SHA-1 digest of password, the form
// stored in an account file's second field.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// AccountFile is a parsed credential file: username to hex-SHA1-password.
type AccountFile map[string]string

// LoadAccountFile parses a credential file at path: one "user:hex-sha1-
// password" entry per line. Blank lines are ignored; a line without a ':'
// is rejected.
func LoadAccountFile(path string) (AccountFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stream: opening account file: %w", err)
	}
	defer f.Close()

	accounts := make(AccountFile)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			return nil, fmt.Errorf("stream: account file line %q missing ':'", line)
		}

		accounts[line[:idx]] = line[idx+1:]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stream: reading account file: %w", err)
	}

	return accounts, nil
}

// Verify reports whether user/password matches an entry in the account
// file.
func (a AccountFile) Verify(user, password string) bool {
	want, ok := a[user]
	if !ok {
		return false
	}

	return want == HashPassword(password)
}

// errAuthFailed wraps errs.ErrAuthFailed with a short reason, kept
// unexported so callers compare with errors.Is against the sentinel.
func errAuthFailed(reason string) error {
	return fmt.Errorf("%w: %s", errs.ErrAuthFailed, reason)
}
