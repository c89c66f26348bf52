package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileService stores uploaded attachments under a configured root and
// hands back the public /storage URL recorded on the task.
type FileService struct {
	RootDir string
}

func NewFileService(rootDir string) *FileService {
	return &FileService{RootDir: filepath.Clean(rootDir)}
}

// Save writes the upload to <root>/archivos/<rand>_<name> and returns
// its serving URL. The random prefix keeps same-named uploads apart.
func (s *FileService) Save(filename string, r io.Reader) (string, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("empty filename")
	}

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate file id: %w", err)
	}
	stored := hex.EncodeToString(buf) + "_" + name

	dir := filepath.Join(s.RootDir, "archivos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, stored))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return "/storage/archivos/" + stored, nil
}

// sanitizeFilename strips any path components and characters that do
// not belong in a stored name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return strings.Trim(name, "._")
}
