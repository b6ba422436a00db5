package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Service wraps Cloudinary as the write-once photo store. Assets live under
// hierarchical per-user folders, e.g. odalea/users/{uid}/pets/{petId}/...
type Service struct {
	cld        *cloudinary.Cloudinary
	rootFolder string
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	URL      string
	PublicID string
	Width    int
	Height   int
	FileSize int64
	Format   string
}

// File validation constants
var (
	AllowedImageTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

	MaxImageSize = int64(10 * 1024 * 1024) // 10MB
)

// NewService creates a new storage service instance
func NewService(cloudName, apiKey, apiSecret, rootFolder string) (*Service, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName)

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	if rootFolder == "" {
		rootFolder = "odalea"
	}

	return &Service{
		cld:        cld,
		rootFolder: rootFolder,
	}, nil
}

// UserFolder returns the storage folder for a user's assets of the given kind
// (e.g. "pets", "lostfound", "reviews", "profile").
func (s *Service) UserFolder(userID, kind string) string {
	return fmt.Sprintf("%s/users/%s/%s", s.rootFolder, userID, kind)
}

// UploadImage uploads an image into the given folder and returns its durable URL
func (s *Service) UploadImage(ctx context.Context, file multipart.File, folder string) (*UploadResult, error) {
	publicID := fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.NewString()[:8])

	uploadParams := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "image",
	}

	result, err := s.cld.Upload.Upload(ctx, file, uploadParams)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return &UploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Width:    result.Width,
		Height:   result.Height,
		FileSize: int64(result.Bytes),
		Format:   result.Format,
	}, nil
}

// Delete removes a single asset
func (s *Service) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return errors.New("publicID is required")
	}

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	return nil
}

// DeleteAll removes every asset in the list, continuing past individual
// failures. Used by the account deletion cascade.
func (s *Service) DeleteAll(ctx context.Context, publicIDs []string) {
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		_ = s.Delete(ctx, id)
	}
}

// ValidateImageFile validates an image file upload
func ValidateImageFile(header *multipart.FileHeader) error {
	if header.Size > MaxImageSize {
		return fmt.Errorf("image file size exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, allowed := range AllowedImageTypes {
		if ext == allowed {
			return nil
		}
	}

	return fmt.Errorf("invalid image file type: %s. Allowed types: %s", ext, strings.Join(AllowedImageTypes, ", "))
}
