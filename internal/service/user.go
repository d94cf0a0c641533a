package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"github.com/jyej0a/mysns/internal/model"
	"github.com/jyej0a/mysns/internal/repository"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	media      *MediaService
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	media *MediaService,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		media:      media,
	}
}

// Sync upserts the local row for an externally authenticated user.
// Called by the client after sign-in; the external subject id comes from
// the verified token, never the body.
func (s *UserService) Sync(ctx context.Context, externalID string, req model.SyncUserRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrNameRequired
	}

	user, err := s.userRepo.UpsertByExternalID(ctx, externalID, name)
	if err != nil {
		return nil, fmt.Errorf("sync user: %w", err)
	}

	log.Printf("[UserService] Sync OK: user=%s", user.ID)
	return user, nil
}

// GetByExternalID resolves the local user for a token subject.
func (s *UserService) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return s.userRepo.GetByExternalID(ctx, externalID)
}

// GetProfile assembles a profile view: the user row, aggregated counts
// and the viewer-relative flags.
func (s *UserService) GetProfile(ctx context.Context, userID string, viewerID *string) (*model.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.userRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		ID:              user.ID,
		Name:            user.Name,
		Bio:             user.Bio,
		ProfileImageURL: user.ProfileImageURL,
		UserStats:       stats,
	}

	if viewerID != nil {
		if *viewerID == userID {
			profile.IsCurrentUser = true
		} else {
			following, err := s.followRepo.Exists(ctx, *viewerID, userID)
			if err != nil {
				return nil, err
			}
			profile.IsFollowing = following
		}
	}

	return profile, nil
}

// UpdateBio sets or clears the caller's bio. Only the profile owner may
// edit it; the limit is counted in runes so multi-byte text is not
// penalized.
func (s *UserService) UpdateBio(ctx context.Context, userID, targetID string, req model.UpdateProfileRequest) (*model.User, error) {
	if userID != targetID {
		return nil, model.ErrNotProfileOwner
	}

	if req.Bio != nil && utf8.RuneCountInString(*req.Bio) > model.MaxBioLength {
		return nil, model.ErrBioTooLong
	}

	user, err := s.userRepo.UpdateBio(ctx, userID, req.Bio)
	if err != nil {
		return nil, err
	}

	log.Printf("[UserService] UpdateBio OK: user=%s", userID)
	return user, nil
}

// UpdateProfileImage uploads a new profile image and swaps it in,
// deleting the previous object afterwards.
func (s *UserService) UpdateProfileImage(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (*model.User, error) {
	current, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.media.UploadProfileImage(ctx, current.ExternalAuthID, file, header)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfileImage(ctx, userID, &result.URL, &result.Key); err != nil {
		// The row update failed; remove the object we just stored.
		s.media.DeleteObject(ctx, result.Key)
		return nil, err
	}

	if current.ProfileImageKey != nil {
		s.media.DeleteObject(ctx, *current.ProfileImageKey)
	}

	log.Printf("[UserService] UpdateProfileImage OK: user=%s key=%s", userID, result.Key)

	return s.userRepo.GetByID(ctx, userID)
}

// RemoveProfileImage clears the profile image and deletes the stored
// object.
func (s *UserService) RemoveProfileImage(ctx context.Context, userID string) (*model.User, error) {
	current, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfileImage(ctx, userID, nil, nil); err != nil {
		return nil, err
	}

	if current.ProfileImageKey != nil {
		s.media.DeleteObject(ctx, *current.ProfileImageKey)
	}

	log.Printf("[UserService] RemoveProfileImage OK: user=%s", userID)

	return s.userRepo.GetByID(ctx, userID)
}
