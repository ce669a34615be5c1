package storage

import (
	"bytes"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// ObjectStore is the subset of the object storage API the processor needs.
type ObjectStore interface {
	Upload(bucket, path, contentType string, data []byte) error
	Download(bucket, path string) ([]byte, error)
	Remove(bucket string, paths []string) error
	List(bucket, prefix string) ([]string, error)
	PublicURL(bucket, path string) string
}

// SupabaseStore talks to a Supabase storage endpoint.
type SupabaseStore struct {
	client  *storage.Client
	baseURL string
}

var _ ObjectStore = (*SupabaseStore)(nil)

const listLimit = 1000

func NewSupabaseStore(baseURL, serviceKey string) *SupabaseStore {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &SupabaseStore{
		client:  storage.NewClient(baseURL+"/storage/v1", serviceKey, nil),
		baseURL: baseURL,
	}
}

func (s *SupabaseStore) Upload(bucket, path, contentType string, data []byte) error {
	upsert := true
	_, err := s.client.UploadFile(bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return nil
}

func (s *SupabaseStore) Download(bucket, path string) ([]byte, error) {
	data, err := s.client.DownloadFile(bucket, path)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", path, err)
	}
	return data, nil
}

func (s *SupabaseStore) Remove(bucket string, paths []string) error {
	if _, err := s.client.RemoveFile(bucket, paths); err != nil {
		return fmt.Errorf("failed to remove files: %w", err)
	}
	return nil
}

func (s *SupabaseStore) List(bucket, prefix string) ([]string, error) {
	objects, err := s.client.ListFiles(bucket, prefix, storage.FileSearchOptions{Limit: listLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	names := make([]string, 0, len(objects))
	for _, o := range objects {
		names = append(names, o.Name)
	}
	return names, nil
}

func (s *SupabaseStore) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucket, path)
}
