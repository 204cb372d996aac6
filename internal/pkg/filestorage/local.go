package filestorage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yigit/coursebooking/internal/pkg/apperrors"
	"github.com/yigit/coursebooking/internal/pkg/logger"
)

const (
	filePrefix = "email_"
	fileExt    = ".html"

	// maxSuffix bounds the collision search for a single second.
	maxSuffix = 1000
)

// LocalStorage stores message files in a local directory.
type LocalStorage struct {
	basePath string
	now      func() time.Time
	mu       sync.Mutex
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath,
// creating the directory when needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		now:      time.Now,
	}, nil
}

// BasePath returns the storage directory
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

func baseName(courseID int64, unix int64, kind string) string {
	return fmt.Sprintf("%s%d_%d_%s", filePrefix, courseID, unix, kind)
}

// SaveMessage writes "To: ..\nSubject: ..\n\n<body>" to
// email_<courseID>_<unix>_<kind>.html, appending -<n> when the name is taken.
func (ls *LocalStorage) SaveMessage(courseID int64, kind, recipient, subject, body string) (string, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := os.MkdirAll(ls.basePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	base := baseName(courseID, ls.now().Unix(), kind)
	content := fmt.Sprintf("To: %s\nSubject: %s\n\n%s", headerValue(recipient), headerValue(subject), body)

	for n := 1; n <= maxSuffix; n++ {
		name := base + fileExt
		if n > 1 {
			name = base + "-" + strconv.Itoa(n) + fileExt
		}
		path := filepath.Join(ls.basePath, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("Failed to create message file")
			return "", fmt.Errorf("failed to create message file: %w", err)
		}

		if _, err := io.WriteString(f, content); err != nil {
			f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to write message file: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to close message file: %w", err)
		}

		logger.Info().Str("path", path).Str("kind", kind).Msg("Message saved to outbox")
		return path, nil
	}

	return "", fmt.Errorf("no free file name for %s after %d attempts", base, maxSuffix)
}

// headerValue keeps a header on its own line.
func headerValue(s string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(s)), " ")
}

func validName(name string) bool {
	return name == filepath.Base(name) &&
		strings.HasPrefix(name, filePrefix) &&
		strings.HasSuffix(name, fileExt)
}

// List returns the message files ordered by name
func (ls *LocalStorage) List() ([]Artifact, error) {
	entries, err := os.ReadDir(ls.basePath)
	if errors.Is(err, os.ErrNotExist) {
		return []Artifact{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	artifacts := []Artifact{}
	for _, e := range entries {
		if e.IsDir() || !validName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:       e.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Name < artifacts[j].Name })
	return artifacts, nil
}

// ParseName extracts the course id and kind from a message file name.
func ParseName(name string) (courseID int64, kind string, err error) {
	if !validName(name) {
		return 0, "", apperrors.ErrInvalidFormat
	}
	parts := strings.SplitN(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt), "_", 3)
	if len(parts) != 3 {
		return 0, "", apperrors.ErrInvalidFormat
	}
	courseID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", apperrors.ErrInvalidFormat
	}
	kind = parts[2]
	if i := strings.LastIndex(kind, "-"); i > 0 {
		kind = kind[:i]
	}
	return courseID, kind, nil
}

// Read parses a message file
func (ls *LocalStorage) Read(name string) (*StoredMessage, error) {
	courseID, kind, err := ParseName(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(ls.basePath, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open message file: %w", err)
	}
	defer f.Close()

	msg := &StoredMessage{Name: name, CourseID: courseID, Kind: kind}
	r := bufio.NewReader(f)

	to, err := readHeader(r, "To: ")
	if err != nil {
		return nil, err
	}
	subject, err := readHeader(r, "Subject: ")
	if err != nil {
		return nil, err
	}
	if blank, err := r.ReadString('\n'); err != nil || blank != "\n" {
		return nil, apperrors.ErrInvalidFormat
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	msg.Recipient = to
	msg.Subject = subject
	msg.Body = string(body)
	return msg, nil
}

func readHeader(r *bufio.Reader, prefix string) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, prefix) {
		return "", apperrors.ErrInvalidFormat
	}
	return strings.TrimSuffix(strings.TrimPrefix(line, prefix), "\n"), nil
}

// Delete removes a message file. Returns nil if the file doesn't exist.
func (ls *LocalStorage) Delete(name string) error {
	if !validName(name) {
		return apperrors.ErrInvalidFormat
	}

	path := filepath.Join(ls.basePath, name)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", path).Msg("Message file to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", path).Msg("Failed to delete message file")
		return fmt.Errorf("failed to delete message file: %w", err)
	}

	logger.Info().Str("path", path).Msg("Message file deleted")
	return nil
}
