package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported file type, allowed: JPG, PNG, GIF, WEBP, PDF")
	ErrFileTooLarge     = errors.New("file exceeds the upload size limit")
	ErrFileNotFound     = errors.New("file not found")
	ErrNoFile           = errors.New("no file was uploaded")
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

type UploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	Mimetype     string `json:"mimetype"`
}

type StoredFile struct {
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type UploadService interface {
	FileRemover
	Store(file *multipart.FileHeader) (*UploadedFile, error)
	Delete(filename string) error
	List() ([]StoredFile, error)
	Dir() string
}

type uploadService struct {
	dir      string
	maxBytes int64
	logger   *logrus.Logger
}

func NewUploadService(dir string, maxMB int, logger *logrus.Logger) (UploadService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &uploadService{
		dir:      dir,
		maxBytes: int64(maxMB) * 1024 * 1024,
		logger:   logger,
	}, nil
}

func (s *uploadService) Store(file *multipart.FileHeader) (*UploadedFile, error) {
	if file == nil {
		return nil, ErrNoFile
	}
	if file.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	mimetype := file.Header.Get("Content-Type")
	if !allowedExtensions[ext] || !allowedMimeTypes[mimetype] {
		return nil, ErrUnsupportedMedia
	}

	filename := uuid.NewString() + ext

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create stored file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, fmt.Errorf("failed to write stored file: %w", err)
	}

	return &UploadedFile{
		Filename:     filename,
		OriginalName: file.Filename,
		URL:          "/uploads/" + filename,
		Size:         file.Size,
		Mimetype:     mimetype,
	}, nil
}

func (s *uploadService) Delete(filename string) error {
	// Base strips any path traversal attempt.
	safe := filepath.Base(filename)
	path := filepath.Join(s.dir, safe)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ErrFileNotFound
	}
	return os.Remove(path)
}

// Remove is the best-effort cleanup used when an order holding a contract
// photo is deleted. Accepts either a bare filename or a "/uploads/..." URL;
// failures are logged, never returned.
func (s *uploadService) Remove(reference string) {
	safe := filepath.Base(reference)
	if safe == "." || safe == "/" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, safe)); err != nil {
		s.logger.WithFields(logrus.Fields{
			"file": safe,
		}).Warn("failed to remove contract photo: ", err)
	}
}

func (s *uploadService) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	files := []StoredFile{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, StoredFile{
			Filename:  entry.Name(),
			URL:       "/uploads/" + entry.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	return files, nil
}

func (s *uploadService) Dir() string {
	return s.dir
}
