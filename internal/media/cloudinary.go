// Package media stores uploaded images and videos on Cloudinary and hands
// back their public URLs.
package media

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-faster/errors"
)

// Uploader stores a file under the given folder and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
}

// CloudinaryUploader uploads files to a Cloudinary account.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
}

// NewCloudinaryUploader builds an uploader from a cloudinary:// URL.
func NewCloudinaryUploader(rawURL string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "cloudinary client")
	}
	cld.Config.URL.Secure = true

	return &CloudinaryUploader{client: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	res, err := u.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		ResourceType: resourceType(data),
	})
	if err != nil {
		return "", errors.Wrap(err, "cloudinary upload")
	}
	if res.Error.Message != "" {
		return "", errors.Errorf("cloudinary upload: %s", res.Error.Message)
	}

	return res.SecureURL, nil
}

// resourceType sniffs the content so videos land on the video pipeline.
func resourceType(data []byte) string {
	if strings.HasPrefix(http.DetectContentType(data), "video/") {
		return "video"
	}
	return "image"
}
