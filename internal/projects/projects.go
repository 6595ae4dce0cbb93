package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/libros-dev/libros/internal/id"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/store"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
)

var (
	// ErrNameRequired is returned when a project has no name.
	ErrNameRequired = errors.New("project name is required")

	// ErrNameTooLong is returned for names over 100 characters.
	ErrNameTooLong = fmt.Errorf("project name must be at most %d characters", maxNameLen)

	// ErrDescriptionTooLong is returned for descriptions over 500 characters.
	ErrDescriptionTooLong = fmt.Errorf("project description must be at most %d characters", maxDescriptionLen)

	// ErrInvalidType is returned for an unknown project type.
	ErrInvalidType = errors.New("invalid project type")

	// ErrInvalidStatus is returned for an unknown project status.
	ErrInvalidStatus = errors.New("invalid project status")
)

// Params describes a project to create or the changes to apply to one.
// On update, nil fields are left untouched.
type Params struct {
	Name        *string
	Description *string
	Type        *string
	Status      *string
}

// Service manages the projects of one owner.
type Service struct {
	repo    store.ProjectRepository
	ownerID string
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a Service for ownerID.
func NewService(repo store.ProjectRepository, ownerID string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ownerID: ownerID, logger: logger, now: time.Now}
}

// SetClock replaces the clock used for timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create validates and persists a new project. The type defaults to
// "empresa" and the status is "activo".
func (s *Service) Create(ctx context.Context, p Params) (model.Project, error) {
	now := s.now().UTC()
	proj := model.Project{
		ID:           id.New(),
		Type:         model.DefaultProjectType,
		OwnerID:      s.ownerID,
		Status:       model.ProjectStatusActive,
		CreatedAt:    now,
		LastModified: now,
	}
	if p.Name == nil {
		return model.Project{}, ErrNameRequired
	}
	if err := apply(&proj, p); err != nil {
		return model.Project{}, err
	}

	if err := s.repo.CreateProject(ctx, proj); err != nil {
		return model.Project{}, fmt.Errorf("creating project %q: %w", proj.Name, err)
	}
	s.logger.Info("project created", "id", proj.ID, "name", proj.Name, "type", proj.Type)
	return proj, nil
}

// List returns the owner's projects, most recently modified first.
func (s *Service) List(ctx context.Context) ([]model.Project, error) {
	projs, err := s.repo.ListProjects(ctx, s.ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projs, nil
}

// Get returns one of the owner's projects. Projects of other owners are
// reported as not found.
func (s *Service) Get(ctx context.Context, projectID string) (model.Project, error) {
	proj, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return model.Project{}, fmt.Errorf("project %s: %w", projectID, err)
	}
	if proj.OwnerID != s.ownerID {
		return model.Project{}, fmt.Errorf("project %s: %w", projectID, store.ErrNotFound)
	}
	return proj, nil
}

// Resolve finds a project by ID or, failing that, by exact name.
func (s *Service) Resolve(ctx context.Context, ref string) (model.Project, error) {
	projs, err := s.List(ctx)
	if err != nil {
		return model.Project{}, err
	}
	for _, p := range projs {
		if p.ID == ref {
			return p, nil
		}
	}
	for _, p := range projs {
		if p.Name == ref {
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("project %s: %w", ref, store.ErrNotFound)
}

// Update applies changes and bumps LastModified.
func (s *Service) Update(ctx context.Context, projectID string, p Params) (model.Project, error) {
	proj, err := s.Get(ctx, projectID)
	if err != nil {
		return model.Project{}, err
	}
	if err := apply(&proj, p); err != nil {
		return model.Project{}, err
	}
	proj.LastModified = s.now().UTC()

	if err := s.repo.UpdateProject(ctx, proj); err != nil {
		return model.Project{}, fmt.Errorf("updating project %s: %w", projectID, err)
	}
	return proj, nil
}

// Touch bumps LastModified after a change to the project's books.
func (s *Service) Touch(ctx context.Context, projectID string) error {
	_, err := s.Update(ctx, projectID, Params{})
	return err
}

// Delete removes the project with its accounts and transactions.
func (s *Service) Delete(ctx context.Context, projectID string) error {
	if _, err := s.Get(ctx, projectID); err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, projectID); err != nil {
		return fmt.Errorf("deleting project %s: %w", projectID, err)
	}
	s.logger.Info("project deleted", "id", projectID)
	return nil
}

func apply(proj *model.Project, p Params) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return ErrNameRequired
		}
		if utf8.RuneCountInString(name) > maxNameLen {
			return ErrNameTooLong
		}
		proj.Name = name
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		if utf8.RuneCountInString(desc) > maxDescriptionLen {
			return ErrDescriptionTooLong
		}
		proj.Description = desc
	}
	if p.Type != nil && *p.Type != "" {
		if !model.ValidProjectType(*p.Type) {
			return fmt.Errorf("%w: %q", ErrInvalidType, *p.Type)
		}
		proj.Type = *p.Type
	}
	if p.Status != nil {
		switch *p.Status {
		case model.ProjectStatusActive, model.ProjectStatusArchive:
			proj.Status = *p.Status
		default:
			return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
		}
	}
	return nil
}
