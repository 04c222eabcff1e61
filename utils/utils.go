package utils

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// DetectContentType detects the file type by reading MIME type information of the file content.
func DetectContentType(fname string) (string, error) {
	file, err := os.Open(fname)
	if err != nil {
		return "", err
	}
	defer file.Close()

	// Only the first 512 bytes are used to sniff the content type.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	// Always returns a valid content-type and "application/octet-stream" if no others seemed to match.
	return http.DetectContentType(buffer[:n]), nil
}

// IsImage reports whether the file content sniffs as an image.
func IsImage(fname string) (bool, error) {
	ctype, err := DetectContentType(fname)
	if err != nil {
		return false, fmt.Errorf("could not detect content type: %w", err)
	}
	return strings.HasPrefix(ctype, "image/"), nil
}
