// Package filestore saves uploaded profile images and returns their public URL.
package filestore

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	// ErrUnsupportedType is returned for file extensions other than images.
	ErrUnsupportedType = errors.New("only jpg, jpeg, png and webp images are allowed")

	// ErrInvalidToken is returned when a token cannot name a file by itself.
	ErrInvalidToken = errors.New("token cannot be used as a file name")
)

// Store persists a file under name, replacing any previous file with the same
// name, and returns the URL clients use to fetch it.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ImageName builds the stored file name for a profile picture: the owner's
// token followed by the lowercased extension of the uploaded file.
func ImageName(token, original string) (string, error) {
	if !ValidToken(token) {
		return "", ErrInvalidToken
	}
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}
	return token + ext, nil
}

// ValidToken reports whether token is usable verbatim as a file name and a
// Cloudinary public id: letters, digits, '-', '_' and '.', not starting with '.'.
func ValidToken(token string) bool {
	if token == "" || strings.HasPrefix(token, ".") {
		return false
	}
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			continue
		}
		return false
	}
	return true
}
