package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg"
	"craft_marketplace_service/pkg/database"
	errprocess "craft_marketplace_service/pkg/err"

	"github.com/google/uuid"
)

// MaxUploadSize chat uploads above this are rejected
const MaxUploadSize = 10 << 20

var allowedUploadTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/zip",
	"text/plain",
}

// UploadUseCase stores chat attachments in object storage
type UploadUseCase struct {
	minioClient *database.MinIOClient
}

// NewUploadUseCase create UploadUseCase
func NewUploadUseCase(mc *database.MinIOClient) *UploadUseCase {
	return &UploadUseCase{minioClient: mc}
}

// Upload validate and store one attachment, returning the metadata the
// sender embeds in its message
func (uc *UploadUseCase) Upload(ctx context.Context, fileName, contentType string, size int64, file io.Reader) (*domain.FileUploadResponse, error) {
	if size <= 0 {
		return nil, errprocess.Set("empty file")
	}
	if size > MaxUploadSize {
		return nil, errprocess.Set("file too large")
	}
	if !pkg.Contains(allowedUploadTypes, contentType) {
		return nil, errprocess.Set(fmt.Sprintf("unsupported file type: %s", contentType))
	}

	objectName := fmt.Sprintf("chat/%s%s", uuid.New().String(), filepath.Ext(fileName))
	if err := uc.minioClient.UploadFile(ctx, objectName, contentType, file, size); err != nil {
		return nil, err
	}

	fileURL := fmt.Sprintf("http://%s/%s/%s", database.MinIOEndpoint, uc.minioClient.BucketName, objectName)

	resp := &domain.FileUploadResponse{
		FileURL:  fileURL,
		FileName: fileName,
		FileSize: size,
		FileType: contentType,
	}
	// images reuse the object itself as thumbnail source
	if strings.HasPrefix(contentType, "image/") {
		resp.ThumbnailURL = fileURL
	}
	return resp, nil
}
