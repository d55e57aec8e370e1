package authenticating

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository"
	"github.com/vfg2006/sales-manager-api/internal/config"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
	"github.com/vfg2006/sales-manager-api/pkg/log"
	"github.com/vfg2006/sales-manager-api/pkg/validation"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator é o provedor de identidade. Cada login e logout é publicado
// para quem se registrou em OnIdentityChange.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.AuthSession, error)
	Signup(ctx context.Context, email, password string) (*domain.AuthSession, error)
	SignOut(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	OnIdentityChange(fn func(context.Context, domain.IdentityEvent)) (cancel func())
}

// OwnerInitializer cria ou atualiza o documento do dono após login e cadastro
type OwnerInitializer interface {
	InitializeOwner(ctx context.Context, identity domain.Identity) error
}

// Service autentica contra a tabela de usuários do Postgres e emite JWTs HS256
type Service struct {
	userRepo repository.UserRepository
	owners   OwnerInitializer
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	broker   *identityBroker

	// revoked guarda o jti dos tokens encerrados em SignOut até expirarem
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewService(userRepo repository.UserRepository, owners OwnerInitializer, cfg config.Auth) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}

	return &Service{
		userRepo: userRepo,
		owners:   owners,
		secret:   []byte(cfg.Secret),
		ttl:      ttl,
		now:      time.Now,
		broker:   newIdentityBroker(),
		revoked:  make(map[string]time.Time),
	}
}

func (s *Service) OnIdentityChange(fn func(context.Context, domain.IdentityEvent)) func() {
	return s.broker.subscribe(fn)
}

func (s *Service) Signup(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	if email == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	email = handleEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, NewAuthError(ErrInvalidFormat, apiErrors.ErrInvalidFormat, err.Error())
	}

	if err := s.ValidatePasswordStrength(password); err != nil {
		return nil, NewAuthError(ErrWeakPassword, apiErrors.ErrInvalidRequest, err.Error())
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar usuário no banco de dados")
	}
	if existing != nil {
		return nil, NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, "Email já cadastrado")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Active:       true,
	})
	if errors.Is(err, repository.ErrEmailAlreadyExists) {
		return nil, NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, "Email já cadastrado")
	}
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao criar usuário")
	}

	return s.open(ctx, domain.Identity{OwnerID: user.ID, Email: user.Email})
}

func handleEmail(s string) string {
	email := strings.ToLower(s)
	email = strings.TrimSpace(email)
	email = strings.ReplaceAll(email, " ", "")
	return email
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	// Validação de entrada
	if email == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	email = handleEmail(email)

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar usuário no banco de dados")
	}

	// Verificar se o usuário existe
	if user == nil {
		return nil, NewAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, "Usuário não encontrado")
	}

	// Verificar se o usuário está ativo
	if !user.Active {
		return nil, NewOwnerAuthError(ErrUserDisabled, apiErrors.ErrUserDisabled, user.ID, "Conta desativada")
	}

	// Verificar senha
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, NewOwnerAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, user.ID, "Senha incorreta")
	}

	return s.open(ctx, domain.Identity{OwnerID: user.ID, Email: user.Email})
}

// open inicializa o documento do dono, emite o token e publica o login
func (s *Service) open(ctx context.Context, identity domain.Identity) (*domain.AuthSession, error) {
	initializeOwner(ctx, s.owners, identity)

	token, expiresAt, err := s.generateJWT(identity)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar token de autenticação")
	}

	s.broker.publish(ctx, loggedIn(identity))

	return &domain.AuthSession{
		Identity:  identity,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// initializeOwner não impede o login: o documento do dono guarda apenas
// metadados e é refeito no próximo acesso
func initializeOwner(ctx context.Context, owners OwnerInitializer, identity domain.Identity) {
	if owners == nil {
		return
	}
	if err := owners.InitializeOwner(ctx, identity); err != nil {
		log.L.WithContext(ctx).WithField("owner_id", identity.OwnerID).WithError(err).Warn("Erro ao inicializar documento do dono")
	}
}

func (s *Service) generateJWT(identity domain.Identity) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := domain.Claims{
		OwnerID: identity.OwnerID,
		Email:   identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.OwnerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, expiresAt, err
}

func (s *Service) ValidateToken(_ context.Context, tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "")
	}
	if err != nil {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid || claims.OwnerID == "" {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
	}

	if s.isRevoked(claims.ID) {
		return nil, NewOwnerAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, claims.OwnerID, "Sessão encerrada")
	}

	return claims, nil
}

// SignOut invalida o token e publica o logout do dono
func (s *Service) SignOut(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return err
	}

	s.revoke(claims)
	s.broker.publish(ctx, loggedOut(claims.OwnerID))

	log.L.WithContext(ctx).WithField("owner_id", claims.OwnerID).Info("Logout realizado")
	return nil
}

func (s *Service) revoke(claims *domain.Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for jti, expiresAt := range s.revoked {
		if expiresAt.Before(now) {
			delete(s.revoked, jti)
		}
	}

	if claims.ID != "" && claims.ExpiresAt != nil {
		s.revoked[claims.ID] = claims.ExpiresAt.Time
	}
}

func (s *Service) isRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}

// ValidatePasswordStrength verifica se a senha atende aos requisitos de segurança
// Senha deve conter pelo menos 8 caracteres, incluindo maiúsculas, minúsculas, números e caracteres especiais
func (s *Service) ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("a senha deve conter pelo menos 8 caracteres")
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	const (
		lowerChars   = "abcdefghijklmnopqrstuvwxyz"
		upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		numberChars  = "0123456789"
		specialChars = "!@#$%^&*()-_=+[]{}|;:,.<>?"
	)

	for _, char := range password {
		switch {
		case strings.ContainsRune(lowerChars, char):
			hasLower = true
		case strings.ContainsRune(upperChars, char):
			hasUpper = true
		case strings.ContainsRune(numberChars, char):
			hasNumber = true
		case strings.ContainsRune(specialChars, char):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return errors.New("a senha deve conter pelo menos uma letra maiúscula")
	}
	if !hasLower {
		return errors.New("a senha deve conter pelo menos uma letra minúscula")
	}
	if !hasNumber {
		return errors.New("a senha deve conter pelo menos um número")
	}
	if !hasSpecial {
		return errors.New("a senha deve conter pelo menos um caractere especial")
	}

	return nil
}
