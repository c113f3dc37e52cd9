package rest

import (
	"bytes"
	"codeclash/internal/model"
	"fmt"
	"mime/multipart"
	"path/filepath"
)

type formField struct {
	name  string
	value string
}

// multipartBody encodes text fields in order, then the avatar file when set
func multipartBody(fields []formField, avatar *model.Avatar) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	if avatar != nil {
		name := filepath.Base(avatar.Filename)
		if name == "." || name == "/" || name == "" {
			name = "avatar"
		}
		part, err := w.CreateFormFile("avatar", name)
		if err != nil {
			return nil, "", fmt.Errorf("create avatar part: %w", err)
		}
		if _, err := part.Write(avatar.Data); err != nil {
			return nil, "", fmt.Errorf("write avatar: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
