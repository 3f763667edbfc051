// File: /services/upload.go
package services

import (
	"bufio"
	"io"
	"net/http"
	"strings"
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

const invalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// sniffImage checks the leading bytes of the upload and returns a reader that still yields the whole file.
func sniffImage(u *Upload) (io.Reader, string, bool) {
	br := bufio.NewReaderSize(u.Content, 512)
	head, _ := br.Peek(512)
	if len(head) == 0 {
		return br, "", false
	}

	detected := http.DetectContentType(head)
	return br, detected, strings.HasPrefix(detected, "image/")
}
