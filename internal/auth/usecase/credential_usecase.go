package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	authService "github.com/ledgerly/securecore/internal/auth/service"
	"github.com/ledgerly/securecore/internal/database"
	apperrors "github.com/ledgerly/securecore/internal/errors"
)

type credentialUseCase struct {
	userRepo         UserRepository
	refreshTokenRepo RefreshTokenRepository
	passwordService  authService.PasswordService
	tokenService     authService.TokenService
	resetService     authService.ResetTokenService
	txManager        database.TxManager
	logger           *slog.Logger
	refreshTokenTTL  time.Duration
	resetTokenTTL    time.Duration
	maxRefreshTokens int
	decoyHash        string
}

// NewCredentialUseCase creates a new CredentialUseCase.
func NewCredentialUseCase(
	userRepo UserRepository,
	refreshTokenRepo RefreshTokenRepository,
	passwordService authService.PasswordService,
	tokenService authService.TokenService,
	resetService authService.ResetTokenService,
	txManager database.TxManager,
	logger *slog.Logger,
	refreshTokenTTL time.Duration,
	resetTokenTTL time.Duration,
	maxRefreshTokens int,
) (CredentialUseCase, error) {
	if maxRefreshTokens <= 0 {
		maxRefreshTokens = authDomain.MaxActiveRefreshTokens
	}

	// Hash of a throwaway value, verified against when the email does not
	// resolve so that login cost does not reveal account existence.
	decoyHash, err := passwordService.Hash(uuid.NewString())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to prepare password decoy")
	}

	return &credentialUseCase{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		passwordService:  passwordService,
		tokenService:     tokenService,
		resetService:     resetService,
		txManager:        txManager,
		logger:           logger,
		refreshTokenTTL:  refreshTokenTTL,
		resetTokenTTL:    resetTokenTTL,
		maxRefreshTokens: maxRefreshTokens,
		decoyHash:        decoyHash,
	}, nil
}

func (u *credentialUseCase) Register(
	ctx context.Context,
	name, email, password string,
) (*authDomain.User, *authDomain.TokenPair, error) {
	email = normalizeEmail(email)

	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, nil, authDomain.ErrEmailTaken
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, apperrors.Wrap(err, "failed to check email availability")
	}

	passwordHash, err := u.passwordService.Hash(password)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to hash password")
	}

	now := time.Now().UTC()
	user := &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		Provider:     authDomain.LocalProvider,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to create user")
	}

	pair, err := u.issueAndStore(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	u.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.String()))

	user.PasswordHash = ""
	return user, pair, nil
}

func (u *credentialUseCase) Login(
	ctx context.Context,
	email, password string,
) (*authDomain.User, *authDomain.TokenPair, error) {
	user, err := u.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			// Burn a comparable amount of work so unknown emails and wrong
			// passwords are indistinguishable from the outside.
			_ = u.passwordService.Verify(password, u.decoyHash)
			return nil, nil, authDomain.ErrInvalidCredentials
		}
		return nil, nil, apperrors.Wrap(err, "failed to load user by email")
	}

	if !u.passwordService.Verify(password, user.PasswordHash) {
		return nil, nil, authDomain.ErrInvalidCredentials
	}

	pair, err := u.issueAndStore(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	user.PasswordHash = ""
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil
	return user, pair, nil
}

func (u *credentialUseCase) Refresh(
	ctx context.Context,
	refreshToken string,
) (*authDomain.TokenPair, error) {
	userID, err := u.tokenService.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	record, err := u.findUsableRecord(ctx, userID, refreshToken)
	if err != nil {
		return nil, err
	}

	var pair *authDomain.TokenPair
	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.refreshTokenRepo.Revoke(txCtx, userID, record.TokenHash); err != nil {
			return apperrors.Wrap(err, "failed to revoke rotated token")
		}

		pair, err = u.issueAndStore(txCtx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

func (u *credentialUseCase) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	record, err := u.findUsableRecord(ctx, userID, refreshToken)
	if err != nil {
		return err
	}

	if err := u.refreshTokenRepo.Revoke(ctx, userID, record.TokenHash); err != nil {
		return apperrors.Wrap(err, "failed to revoke refresh token")
	}
	return nil
}

func (u *credentialUseCase) Authenticate(
	ctx context.Context,
	accessToken string,
) (*authDomain.User, error) {
	userID, err := u.tokenService.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.Get(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "failed to load authenticated user")
	}
	return user, nil
}

func (u *credentialUseCase) ValidateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
	refreshToken string,
) (bool, error) {
	_, err := u.findUsableRecord(ctx, userID, refreshToken)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (u *credentialUseCase) ChangePassword(
	ctx context.Context,
	userID uuid.UUID,
	current, newPassword, currentRefreshToken string,
) error {
	user, err := u.userRepo.GetWithCredentials(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return authDomain.ErrUserNotFound
		}
		return apperrors.Wrap(err, "failed to load user")
	}

	if !u.passwordService.Verify(current, user.PasswordHash) {
		return apperrors.Wrap(authDomain.ErrInvalidCredentials, "incorrect current password")
	}

	if current == newPassword {
		return authDomain.ErrPasswordUnchanged
	}

	passwordHash, err := u.passwordService.Hash(newPassword)
	if err != nil {
		return apperrors.Wrap(err, "failed to hash password")
	}

	// The session performing the change survives; every other device is
	// forced to re-authenticate.
	var surviving *authDomain.RefreshTokenRecord
	if currentRefreshToken != "" {
		if record, err := u.findUsableRecord(ctx, userID, currentRefreshToken); err == nil {
			surviving = record
		}
	}

	return u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		user.PasswordHash = passwordHash
		user.UpdatedAt = time.Now().UTC()
		if err := u.userRepo.Update(txCtx, user); err != nil {
			return apperrors.Wrap(err, "failed to update password")
		}

		if err := u.refreshTokenRepo.RevokeAll(txCtx, userID); err != nil {
			return apperrors.Wrap(err, "failed to revoke refresh tokens")
		}

		if surviving != nil {
			record := &authDomain.RefreshTokenRecord{
				ID:        uuid.Must(uuid.NewV7()),
				UserID:    userID,
				TokenHash: surviving.TokenHash,
				CreatedAt: time.Now().UTC(),
				ExpiresAt: surviving.ExpiresAt,
			}
			if err := u.refreshTokenRepo.Add(txCtx, record); err != nil {
				return apperrors.Wrap(err, "failed to retain current session")
			}
		}
		return nil
	})
}

func (u *credentialUseCase) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := u.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			// Same outward behavior as the success path.
			return "", nil
		}
		return "", apperrors.Wrap(err, "failed to load user by email")
	}

	plain, hash, err := u.resetService.Generate()
	if err != nil {
		return "", apperrors.Wrap(err, "failed to generate reset token")
	}

	expiresAt := time.Now().UTC().Add(u.resetTokenTTL)
	user.ResetTokenHash = &hash
	user.ResetTokenExpiresAt = &expiresAt
	user.UpdatedAt = time.Now().UTC()

	if err := u.userRepo.Update(ctx, user); err != nil {
		return "", apperrors.Wrap(err, "failed to store reset token")
	}

	u.logger.InfoContext(ctx, "password reset requested", slog.String("user_id", user.ID.String()))
	return plain, nil
}

func (u *credentialUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := u.findUserByResetToken(ctx, token)
	if err != nil {
		return err
	}

	passwordHash, err := u.passwordService.Hash(newPassword)
	if err != nil {
		return apperrors.Wrap(err, "failed to hash password")
	}

	return u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		user.PasswordHash = passwordHash
		user.ResetTokenHash = nil
		user.ResetTokenExpiresAt = nil
		user.UpdatedAt = time.Now().UTC()
		if err := u.userRepo.Update(txCtx, user); err != nil {
			return apperrors.Wrap(err, "failed to update password")
		}

		if err := u.refreshTokenRepo.RevokeAll(txCtx, user.ID); err != nil {
			return apperrors.Wrap(err, "failed to revoke refresh tokens")
		}
		return nil
	})
}

// issueAndStore mints a token pair and records the refresh token, pruning
// inactive records and evicting the oldest active ones so the user never
// holds more than maxRefreshTokens usable tokens.
func (u *credentialUseCase) issueAndStore(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.TokenPair, error) {
	pair, err := u.tokenService.IssuePair(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue token pair")
	}

	if err := u.refreshTokenRepo.PruneInactive(ctx, userID); err != nil {
		return nil, apperrors.Wrap(err, "failed to prune refresh tokens")
	}

	records, err := u.refreshTokenRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list refresh tokens")
	}

	now := time.Now().UTC()
	active := make([]*authDomain.RefreshTokenRecord, 0, len(records))
	for _, record := range records {
		if record.Usable(now) {
			active = append(active, record)
		}
	}

	// records are ordered oldest first, so eviction walks from the front.
	for i := 0; len(active)-i >= u.maxRefreshTokens; i++ {
		if err := u.refreshTokenRepo.Delete(ctx, active[i].ID); err != nil {
			return nil, apperrors.Wrap(err, "failed to evict refresh token")
		}
	}

	record := &authDomain.RefreshTokenRecord{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		TokenHash: u.tokenService.HashToken(pair.RefreshToken),
		CreatedAt: now,
		ExpiresAt: now.Add(u.refreshTokenTTL),
	}
	if err := u.refreshTokenRepo.Add(ctx, record); err != nil {
		return nil, apperrors.Wrap(err, "failed to store refresh token")
	}

	return pair, nil
}

// findUsableRecord locates the stored record matching the presented refresh
// token and ensures it is neither revoked nor expired.
func (u *credentialUseCase) findUsableRecord(
	ctx context.Context,
	userID uuid.UUID,
	refreshToken string,
) (*authDomain.RefreshTokenRecord, error) {
	records, err := u.refreshTokenRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list refresh tokens")
	}

	tokenHash := u.tokenService.HashToken(refreshToken)
	now := time.Now().UTC()
	for _, record := range records {
		if record.TokenHash == tokenHash {
			if !record.Usable(now) {
				return nil, authDomain.ErrInvalidCredentials
			}
			return record, nil
		}
	}
	return nil, authDomain.ErrInvalidCredentials
}

func (u *credentialUseCase) findUserByResetToken(
	ctx context.Context,
	token string,
) (*authDomain.User, error) {
	if token == "" {
		return nil, authDomain.ErrResetTokenInvalid
	}

	hash := u.resetService.HashToken(token)
	user, err := u.userRepo.GetByResetTokenHash(ctx, hash)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, authDomain.ErrResetTokenInvalid
		}
		return nil, apperrors.Wrap(err, "failed to load user by reset token")
	}

	if user.ResetTokenExpiresAt == nil || time.Now().UTC().After(*user.ResetTokenExpiresAt) {
		return nil, authDomain.ErrResetTokenInvalid
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
