package repositories

import (
	"context"
	"donation-matching-service/internal/domain"
	"fmt"
)

// FileSource serves organizations straight from a YAML seed file.
// The file is re-read on every call so edits show up on the next reload.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) ListOrganizations(ctx context.Context) ([]*domain.Organization, error) {
	seed, err := LoadSeedFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return seed.DomainOrganizations(), nil
}

// StaticSource returns a fixed organization list, or Err when set.
type StaticSource struct {
	Orgs []*domain.Organization
	Err  error
}

func (s *StaticSource) ListOrganizations(ctx context.Context) ([]*domain.Organization, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Orgs, nil
}
