package app

import (
	"fmt"
	"sync"

	authHTTP "github.com/ledgerly/securecore/internal/auth/http"
	authRepository "github.com/ledgerly/securecore/internal/auth/repository"
	authService "github.com/ledgerly/securecore/internal/auth/service"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
)

// authComponents holds the credential lifecycle and audit dependencies.
type authComponents struct {
	passwordService authService.PasswordService
	tokenService    authService.TokenService
	resetService    authService.ResetTokenService
	csrfService     authService.CsrfService
	auditSigner     authService.AuditSigner

	sessionStore authHTTP.SessionSecretStore
	csrfGuard    *authHTTP.CsrfGuard

	userRepo         authUseCase.UserRepository
	refreshTokenRepo authUseCase.RefreshTokenRepository
	auditEventRepo   authUseCase.AuditEventRepository

	credentialUseCase authUseCase.CredentialUseCase
	auditUseCase      authUseCase.AuditUseCase

	authHandler  *authHTTP.AuthHandler
	auditHandler *authHTTP.AuditHandler

	passwordServiceInit   sync.Once
	tokenServiceInit      sync.Once
	resetServiceInit      sync.Once
	csrfServiceInit       sync.Once
	auditSignerInit       sync.Once
	sessionStoreInit      sync.Once
	csrfGuardInit         sync.Once
	userRepoInit          sync.Once
	refreshTokenRepoInit  sync.Once
	auditEventRepoInit    sync.Once
	credentialUseCaseInit sync.Once
	auditUseCaseInit      sync.Once
	authHandlerInit       sync.Once
	auditHandlerInit      sync.Once
}

// PasswordService returns the configured password hasher.
func (c *Container) PasswordService() (authService.PasswordService, error) {
	c.passwordServiceInit.Do(func() {
		service, err := authService.NewPasswordService(c.config.PasswordHasher, c.config.BcryptCost)
		if err != nil {
			c.initErrors["passwordService"] = fmt.Errorf("failed to create password service: %w", err)
			return
		}
		c.passwordService = service
	})
	if storedErr, exists := c.initErrors["passwordService"]; exists {
		return nil, storedErr
	}
	return c.passwordService, nil
}

// TokenService returns the JWT token service.
func (c *Container) TokenService() (authService.TokenService, error) {
	c.tokenServiceInit.Do(func() {
		service, err := authService.NewJWTService(
			c.config.JWTAccessSecret,
			c.config.JWTRefreshSecret,
			c.config.AccessTokenTTL,
			c.config.RefreshTokenTTL,
		)
		if err != nil {
			c.initErrors["tokenService"] = fmt.Errorf("failed to create token service: %w", err)
			return
		}
		c.tokenService = service
	})
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// ResetTokenService returns the password reset token service.
func (c *Container) ResetTokenService() authService.ResetTokenService {
	c.resetServiceInit.Do(func() {
		c.resetService = authService.NewResetTokenService()
	})
	return c.resetService
}

// CsrfService returns the CSRF token service.
func (c *Container) CsrfService() authService.CsrfService {
	c.csrfServiceInit.Do(func() {
		c.csrfService = authService.NewCsrfService()
	})
	return c.csrfService
}

// AuditSigner returns the audit event signer.
func (c *Container) AuditSigner() authService.AuditSigner {
	c.auditSignerInit.Do(func() {
		c.auditSigner = authService.NewAuditSigner()
	})
	return c.auditSigner
}

// SessionSecretStore returns the per-session CSRF secret store: Redis when
// REDIS_URL is set, in-process otherwise.
func (c *Container) SessionSecretStore() (authHTTP.SessionSecretStore, error) {
	c.sessionStoreInit.Do(func() {
		if c.config.RedisURL == "" {
			c.sessionStore = authHTTP.NewMemorySessionStore()
			return
		}
		store, err := authHTTP.NewRedisSessionStore(c.config.RedisURL)
		if err != nil {
			c.initErrors["sessionStore"] = fmt.Errorf("failed to create session store: %w", err)
			return
		}
		c.sessionStore = store
	})
	if storedErr, exists := c.initErrors["sessionStore"]; exists {
		return nil, storedErr
	}
	return c.sessionStore, nil
}

// CsrfGuard returns the CSRF middleware and token handler.
func (c *Container) CsrfGuard() (*authHTTP.CsrfGuard, error) {
	c.csrfGuardInit.Do(func() {
		store, err := c.SessionSecretStore()
		if err != nil {
			c.initErrors["csrfGuard"] = err
			return
		}
		c.csrfGuard = authHTTP.NewCsrfGuard(
			c.CsrfService(),
			store,
			c.config.SessionSecret,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["csrfGuard"]; exists {
		return nil, storedErr
	}
	return c.csrfGuard, nil
}

// UserRepository returns the user repository based on the database driver.
func (c *Container) UserRepository() (authUseCase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["userRepo"] = fmt.Errorf("failed to get database for user repository: %w", err)
			return
		}
		cipher, err := c.FieldCipher()
		if err != nil {
			c.initErrors["userRepo"] = fmt.Errorf("failed to get field cipher for user repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.userRepo = authRepository.NewPostgreSQLUserRepository(db, cipher)
		case "mysql":
			c.userRepo = authRepository.NewMySQLUserRepository(db, cipher)
		default:
			c.initErrors["userRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// RefreshTokenRepository returns the refresh token repository based on the
// database driver.
func (c *Container) RefreshTokenRepository() (authUseCase.RefreshTokenRepository, error) {
	c.refreshTokenRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["refreshTokenRepo"] = fmt.Errorf(
				"failed to get database for refresh token repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.refreshTokenRepo = authRepository.NewPostgreSQLRefreshTokenRepository(db)
		case "mysql":
			c.refreshTokenRepo = authRepository.NewMySQLRefreshTokenRepository(db)
		default:
			c.initErrors["refreshTokenRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["refreshTokenRepo"]; exists {
		return nil, storedErr
	}
	return c.refreshTokenRepo, nil
}

// AuditEventRepository returns the audit event repository based on the
// database driver.
func (c *Container) AuditEventRepository() (authUseCase.AuditEventRepository, error) {
	c.auditEventRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["auditEventRepo"] = fmt.Errorf(
				"failed to get database for audit event repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.auditEventRepo = authRepository.NewPostgreSQLAuditEventRepository(db)
		case "mysql":
			c.auditEventRepo = authRepository.NewMySQLAuditEventRepository(db)
		default:
			c.initErrors["auditEventRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["auditEventRepo"]; exists {
		return nil, storedErr
	}
	return c.auditEventRepo, nil
}

// CredentialUseCase returns the credential use case, decorated with business
// metrics.
func (c *Container) CredentialUseCase() (authUseCase.CredentialUseCase, error) {
	c.credentialUseCaseInit.Do(func() {
		useCase, err := c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
			return
		}
		c.credentialUseCase = useCase
	})
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// AuditUseCase returns the audit use case with its background worker started.
func (c *Container) AuditUseCase() (authUseCase.AuditUseCase, error) {
	c.auditUseCaseInit.Do(func() {
		useCase, err := c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
			return
		}
		c.auditUseCase = useCase
	})
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

// AuthHandler returns the authentication HTTP handler.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	c.authHandlerInit.Do(func() {
		credentialUseCase, err := c.CredentialUseCase()
		if err != nil {
			c.initErrors["authHandler"] = err
			return
		}
		auditUseCase, err := c.AuditUseCase()
		if err != nil {
			c.initErrors["authHandler"] = err
			return
		}
		c.authHandler = authHTTP.NewAuthHandler(credentialUseCase, auditUseCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.authHandler, nil
}

// AuditHandler returns the audit query HTTP handler.
func (c *Container) AuditHandler() (*authHTTP.AuditHandler, error) {
	c.auditHandlerInit.Do(func() {
		auditUseCase, err := c.AuditUseCase()
		if err != nil {
			c.initErrors["auditHandler"] = err
			return
		}
		c.auditHandler = authHTTP.NewAuditHandler(auditUseCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["auditHandler"]; exists {
		return nil, storedErr
	}
	return c.auditHandler, nil
}

// initCredentialUseCase creates the credential use case with all its
// dependencies.
func (c *Container) initCredentialUseCase() (authUseCase.CredentialUseCase, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for credential use case: %w", err)
	}

	refreshTokenRepo, err := c.RefreshTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token repository for credential use case: %w", err)
	}

	passwordService, err := c.PasswordService()
	if err != nil {
		return nil, fmt.Errorf("failed to get password service for credential use case: %w", err)
	}

	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for credential use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for credential use case: %w", err)
	}

	useCase, err := authUseCase.NewCredentialUseCase(
		userRepo,
		refreshTokenRepo,
		passwordService,
		tokenService,
		c.ResetTokenService(),
		txManager,
		c.Logger(),
		c.config.RefreshTokenTTL,
		c.config.ResetTokenTTL,
		c.config.MaxRefreshTokens,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
	}

	return authUseCase.NewCredentialUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initAuditUseCase creates the audit use case with all its dependencies.
func (c *Container) initAuditUseCase() (authUseCase.AuditUseCase, error) {
	repo, err := c.AuditEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event repository for audit use case: %w", err)
	}

	cipher, err := c.FieldCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get field cipher for audit use case: %w", err)
	}

	// The signer derives its own HMAC key from the encryption key via HKDF.
	encryptionKey, err := c.EncryptionKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption key for audit use case: %w", err)
	}

	securityMetrics, err := c.SecurityMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get security metrics for audit use case: %w", err)
	}

	return authUseCase.NewAuditUseCase(
		repo,
		c.AuditSigner(),
		cipher,
		encryptionKey,
		c.Logger(),
		securityMetrics,
		c.config.AuditQueueSize,
	), nil
}
