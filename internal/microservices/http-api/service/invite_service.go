package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"djrating/internal/metrics"
	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	inviteFallbackPrefix = "DJR"
	invitePrefixMax      = 5
	invitePrefixMin      = 2
	inviteSuffixLength   = 6
	inviteMaxAttempts    = 10
	inviteAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// InviteSettings are the defaults applied to newly issued codes.
type InviteSettings struct {
	UsageLimit int
	CodeTTL    time.Duration // zero means codes never expire
}

type InviteService interface {
	// Generate spends one unit of the caller's quota on a new code.
	Generate(ctx context.Context, userID string) (*dto.InviteCodeResponse, error)
	CreateAdmin(ctx context.Context, req dto.AdminInviteRequest) (*dto.InviteCodeResponse, error)
	Validate(ctx context.Context, code string) (*dto.InviteValidationResponse, error)
	Use(ctx context.Context, userID, code string) (*dto.InviteUseResponse, error)
	ListMine(ctx context.Context, userID string) ([]dto.InviteCodeResponse, error)
	Deactivate(ctx context.Context, code string) error
}

type inviteService struct {
	store    repository.Store
	settings InviteSettings
	logger   *zap.Logger
	now      func() time.Time
	suffix   func(n int) (string, error)
}

func NewInviteService(store repository.Store, settings InviteSettings, logger *zap.Logger) InviteService {
	if settings.UsageLimit < 1 {
		settings.UsageLimit = 1
	}
	return &inviteService{
		store:    store,
		settings: settings,
		logger:   logger,
		now:      time.Now,
		suffix:   randomSuffix,
	}
}

// invitePrefix keeps the first five ASCII letters of name, uppercased. Names
// with fewer than two letters get the fallback prefix.
func invitePrefix(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == invitePrefixMax {
				break
			}
		}
	}
	if b.Len() < invitePrefixMin {
		return inviteFallbackPrefix
	}
	return b.String()
}

func randomSuffix(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = inviteAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// uniqueCode tries the name-derived prefix first, then the fallback prefix,
// each for a bounded number of attempts.
func (s *inviteService) uniqueCode(ctx context.Context, invites repository.InviteRepository, name string) (string, error) {
	prefixes := []string{invitePrefix(name)}
	if prefixes[0] != inviteFallbackPrefix {
		prefixes = append(prefixes, inviteFallbackPrefix)
	}

	for _, prefix := range prefixes {
		for attempt := 0; attempt < inviteMaxAttempts; attempt++ {
			suffix, err := s.suffix(inviteSuffixLength)
			if err != nil {
				return "", fmt.Errorf("generate invite suffix: %w", err)
			}
			code := prefix + "-" + suffix
			exists, err := invites.CodeExists(ctx, code)
			if err != nil {
				return "", fmt.Errorf("check invite code: %w", err)
			}
			if !exists {
				return code, nil
			}
		}
	}
	return "", errors.New("could not generate a unique invite code")
}

func (s *inviteService) expiry(now time.Time, ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	at := now.Add(ttl)
	return &at
}

func (s *inviteService) Generate(ctx context.Context, userID string) (*dto.InviteCodeResponse, error) {
	var invite *models.InviteCode
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		// the row lock serializes concurrent issuance against the same quota
		user, err := tx.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lock user: %w", err)
		}
		if user.InviteQuota <= 0 {
			return ErrQuotaExhausted
		}

		code, err := s.uniqueCode(ctx, tx.Invites(), user.Nickname)
		if err != nil {
			return err
		}

		creator := userID
		invite = &models.InviteCode{
			Code:       code,
			CreatorID:  &creator,
			UsageLimit: s.settings.UsageLimit,
			ExpiresAt:  s.expiry(s.now(), s.settings.CodeTTL),
			IsActive:   true,
		}
		if err := tx.Invites().Create(ctx, invite); err != nil {
			return fmt.Errorf("insert invite code: %w", err)
		}

		ok, err := tx.Users().ConsumeInviteQuota(ctx, userID)
		if err != nil {
			return fmt.Errorf("consume invite quota: %w", err)
		}
		if !ok {
			return ErrQuotaExhausted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordInviteEvent("issued")
	s.logger.Info("invite code issued", zap.String("user_id", userID), zap.String("code", invite.Code))
	return dto.FromModelToInviteCodeResponse(invite), nil
}

func (s *inviteService) CreateAdmin(ctx context.Context, req dto.AdminInviteRequest) (*dto.InviteCodeResponse, error) {
	limit := req.UsageLimit
	if limit <= 0 {
		limit = s.settings.UsageLimit
	}
	ttl := s.settings.CodeTTL
	if req.ExpiresInHours > 0 {
		ttl = time.Duration(req.ExpiresInHours) * time.Hour
	}

	var invite *models.InviteCode
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		code, err := s.uniqueCode(ctx, tx.Invites(), req.Label)
		if err != nil {
			return err
		}
		invite = &models.InviteCode{
			Code:       code,
			UsageLimit: limit,
			ExpiresAt:  s.expiry(s.now(), ttl),
			IsActive:   true,
		}
		if err := tx.Invites().Create(ctx, invite); err != nil {
			return fmt.Errorf("insert invite code: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordInviteEvent("issued_admin")
	s.logger.Info("admin invite code issued", zap.String("code", invite.Code), zap.Int("usage_limit", limit))
	return dto.FromModelToInviteCodeResponse(invite), nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *inviteService) Validate(ctx context.Context, code string) (*dto.InviteValidationResponse, error) {
	code = normalizeCode(code)
	resp := &dto.InviteValidationResponse{Code: code}

	invite, err := s.store.Invites().FindByCode(ctx, code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reason := invite.Check(s.now())
	resp.Valid = reason == models.InviteValid
	resp.Reason = string(reason)
	if reason != models.InviteNotFound {
		resp.Remaining = invite.Remaining()
		resp.ExpiresAt = invite.ExpiresAt
	}
	return resp, nil
}

func reasonError(reason models.InviteInvalidReason) error {
	switch reason {
	case models.InviteNotFound:
		return ErrInviteNotFound
	case models.InviteExpired:
		return ErrInviteExpired
	case models.InviteLimitReached:
		return ErrInviteLimitReached
	}
	return nil
}

func (s *inviteService) Use(ctx context.Context, userID, code string) (*dto.InviteUseResponse, error) {
	code = normalizeCode(code)
	var resp *dto.InviteUseResponse

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lock user: %w", err)
		}
		if user.HasRedeemedInvite() {
			return ErrAlreadyRedeemed
		}

		invite, err := tx.Invites().FindByCodeForUpdate(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInviteNotFound
			}
			return fmt.Errorf("lock invite code: %w", err)
		}

		now := s.now()
		if err := reasonError(invite.Check(now)); err != nil {
			return err
		}
		if invite.CreatorID != nil && *invite.CreatorID == userID {
			return ErrOwnInviteCode
		}

		ok, err := tx.Invites().IncrementUsed(ctx, invite.ID)
		if err != nil {
			return fmt.Errorf("increment invite usage: %w", err)
		}
		if !ok {
			return ErrInviteLimitReached
		}

		ok, err = tx.Users().GrantAccess(ctx, userID, invite.Code, invite.CreatorID, now)
		if err != nil {
			return fmt.Errorf("grant access: %w", err)
		}
		if !ok {
			return ErrAlreadyRedeemed
		}

		if invite.CreatorID != nil {
			if err := tx.Users().IncrementInvitesAccepted(ctx, *invite.CreatorID); err != nil {
				return fmt.Errorf("credit inviter: %w", err)
			}
		}

		resp = &dto.InviteUseResponse{
			Code:        invite.Code,
			AccessLevel: models.AccessFull,
			InvitedBy:   invite.CreatorID,
			GrantedAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordInviteEvent("redeemed")
	s.logger.Info("invite code redeemed", zap.String("user_id", userID), zap.String("code", code))
	return resp, nil
}

func (s *inviteService) ListMine(ctx context.Context, userID string) ([]dto.InviteCodeResponse, error) {
	codes, err := s.store.Invites().ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InviteCodeResponse, 0, len(codes))
	for i := range codes {
		out = append(out, *dto.FromModelToInviteCodeResponse(&codes[i]))
	}
	return out, nil
}

func (s *inviteService) Deactivate(ctx context.Context, code string) error {
	err := s.store.Invites().Deactivate(ctx, normalizeCode(code))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInviteNotFound
	}
	if err == nil {
		metrics.RecordInviteEvent("deactivated")
	}
	return err
}
