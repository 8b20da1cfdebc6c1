package api

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/nfnt/resize"
)

// upload is a validated image read from a multipart form.
type upload struct {
	Data     []byte
	MIMEType string
}

// readUpload validates the content type and size of file and reads it.
func readUpload(file *multipart.FileHeader, maxSize int64) (*upload, *Error) {
	mimeType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, NewError(CodeInvalidImageType, "Invalid file type. Please upload an image.", http.StatusBadRequest, nil)
	}
	if file.Size > maxSize {
		return nil, NewError(CodeInvalidImageSize,
			fmt.Sprintf("File too large. Please upload an image smaller than %dMB.", maxSize>>20),
			http.StatusBadRequest, nil)
	}

	src, err := file.Open()
	if err != nil {
		return nil, NewError(CodeInternalError, "Failed to read upload", http.StatusInternalServerError, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, NewError(CodeInternalError, "Failed to read upload", http.StatusInternalServerError, err)
	}
	if int64(len(data)) > maxSize {
		return nil, NewError(CodeInvalidImageSize, "File too large.", http.StatusBadRequest, nil)
	}
	return &upload{Data: data, MIMEType: mimeType}, nil
}

// downscale shrinks images wider than width, keeping the aspect ratio. PNG
// stays PNG and everything else is re-encoded as JPEG. Formats that cannot be
// decoded here are passed through unchanged for the model to handle.
func downscale(u *upload, width uint) *upload {
	img, format, err := image.Decode(bytes.NewReader(u.Data))
	if err != nil || uint(img.Bounds().Dx()) <= width {
		return u
	}

	img = resize.Resize(width, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	mimeType := "image/jpeg"
	if format == "png" {
		mimeType = "image/png"
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return u
	}
	return &upload{Data: buf.Bytes(), MIMEType: mimeType}
}
