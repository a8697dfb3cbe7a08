package scorer

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResumeFile is the binary resume payload with its display name.
type ResumeFile struct {
	Name string
	Size int64
	Data []byte
}

// LoadResumeFile reads the resume at path. The base name becomes the display name.
func LoadResumeFile(path string) (*ResumeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume file: %w", err)
	}

	return &ResumeFile{
		Name: filepath.Base(path),
		Size: int64(len(data)),
		Data: data,
	}, nil
}

// SizeKB is the file size in kilobytes, as shown next to the file name.
func (f *ResumeFile) SizeKB() float64 {
	if f == nil {
		return 0
	}
	return float64(f.Size) / 1024
}
