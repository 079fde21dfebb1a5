package cmd

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/riskcsv-cli/internal/session"
)

// fileInputFromPath describes a local file the way a browser upload would:
// name, media type guessed from the extension, size, and a lazy reader.
func fileInputFromPath(path string) (session.FileInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return session.FileInput{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return session.FileInput{}, fmt.Errorf("%s is a directory", path)
	}
	return session.FileInput{
		Name:     filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Size:     info.Size(),
		Open:     func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}
