package media

import (
	"bytes"
	"context"
	"errors"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const DefaultFolder = "DevEvent"

// CloudinaryUploader uploads image blobs into a fixed logical folder.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader expects a cloudinary:// URL carrying the cloud
// name and credentials.
func NewCloudinaryUploader(cloudinaryURL, folder string) (*CloudinaryUploader, error) {
	if folder == "" {
		folder = DefaultFolder
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)

	if err != nil {
		return nil, err
	}

	return &CloudinaryUploader{
		cld:    cld,
		folder: folder,
	}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       u.folder,
		ResourceType: "image",
	})

	if err != nil {
		return "", &UploadError{Err: err}
	}

	if res.Error.Message != "" {
		return "", &UploadError{Err: errors.New(res.Error.Message)}
	}

	if res.SecureURL == "" {
		return "", &UploadError{Err: errors.New("upload response missing secure url")}
	}

	return res.SecureURL, nil
}
