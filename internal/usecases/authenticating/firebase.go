package authenticating

import (
	"context"
	"strconv"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-resty/resty/v2"
	"github.com/vfg2006/sales-manager-api/internal/config"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
	"github.com/vfg2006/sales-manager-api/pkg/log"
)

// TokenVerifier é a parte do Admin SDK usada pelo provedor; *auth.Client a implementa
type TokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type identityToolkitRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type identityToolkitResponse struct {
	LocalID   string `json:"localId"`
	Email     string `json:"email"`
	IDToken   string `json:"idToken"`
	ExpiresIn string `json:"expiresIn"`
}

type identityToolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FirebaseService autentica pelo Firebase Authentication: login e cadastro
// pela API REST do Identity Toolkit, verificação e logout pelo Admin SDK
type FirebaseService struct {
	client   *resty.Client
	apiKey   string
	verifier TokenVerifier
	owners   OwnerInitializer
	broker   *identityBroker
}

func NewFirebaseService(cfg config.Firebase, verifier TokenVerifier, owners OwnerInitializer) *FirebaseService {
	return &FirebaseService{
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.IdentityToolkitURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetTimeout(15 * time.Second),
		apiKey:   cfg.WebAPIKey,
		verifier: verifier,
		owners:   owners,
		broker:   newIdentityBroker(),
	}
}

func (s *FirebaseService) OnIdentityChange(fn func(context.Context, domain.IdentityEvent)) func() {
	return s.broker.subscribe(fn)
}

func (s *FirebaseService) Login(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	return s.passwordFlow(ctx, "/accounts:signInWithPassword", email, password)
}

func (s *FirebaseService) Signup(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	return s.passwordFlow(ctx, "/accounts:signUp", email, password)
}

func (s *FirebaseService) passwordFlow(ctx context.Context, endpoint, email, password string) (*domain.AuthSession, error) {
	if email == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	var (
		result  identityToolkitResponse
		failure identityToolkitError
	)

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("key", s.apiKey).
		SetBody(identityToolkitRequest{
			Email:             handleEmail(email),
			Password:          password,
			ReturnSecureToken: true,
		}).
		SetResult(&result).
		SetError(&failure).
		Post(endpoint)
	if err != nil {
		log.L.WithContext(ctx).WithError(err).Error("Erro ao chamar o Identity Toolkit")
		return nil, NewAuthError(ErrExternalService, apiErrors.ErrCommunication, err.Error())
	}

	if resp.IsError() {
		return nil, translateToolkitError(failure.Error.Message)
	}

	identity := domain.Identity{OwnerID: result.LocalID, Email: result.Email}
	initializeOwner(ctx, s.owners, identity)
	s.broker.publish(ctx, loggedIn(identity))

	return &domain.AuthSession{
		Identity:  identity,
		Token:     result.IDToken,
		ExpiresAt: time.Now().Add(expiresIn(result.ExpiresIn)),
	}, nil
}

// expiresIn converte a validade em segundos devolvida pela API
func expiresIn(seconds string) time.Duration {
	n, err := strconv.Atoi(seconds)
	if err != nil || n <= 0 {
		return time.Hour
	}
	return time.Duration(n) * time.Second
}

// translateToolkitError traduz as mensagens do Identity Toolkit, que podem
// vir com detalhe após " : "
func translateToolkitError(message string) *AuthError {
	code, detail, _ := strings.Cut(message, " : ")

	switch code {
	case "EMAIL_NOT_FOUND":
		return NewAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, "Usuário não encontrado")
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Email ou senha incorretos")
	case "USER_DISABLED":
		return NewAuthError(ErrUserDisabled, apiErrors.ErrUserDisabled, "Conta desativada")
	case "EMAIL_EXISTS":
		return NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, "Email já cadastrado")
	case "INVALID_EMAIL":
		return NewAuthError(ErrInvalidFormat, apiErrors.ErrInvalidFormat, "Email inválido")
	case "WEAK_PASSWORD":
		return NewAuthError(ErrWeakPassword, apiErrors.ErrInvalidRequest, detail)
	case "MISSING_PASSWORD", "MISSING_EMAIL":
		return NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	default:
		return NewAuthError(ErrExternalService, apiErrors.ErrExternalService, message)
	}
}

func (s *FirebaseService) ValidateToken(ctx context.Context, idToken string) (*domain.Claims, error) {
	if idToken == "" {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
	}

	token, err := s.verifier.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	switch {
	case err == nil:
	case auth.IsIDTokenExpired(err):
		return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "")
	case auth.IsIDTokenRevoked(err):
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "Sessão encerrada")
	default:
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	email, _ := token.Claims["email"].(string)
	return &domain.Claims{OwnerID: token.UID, Email: email}, nil
}

// SignOut revoga os refresh tokens do dono e publica o logout
func (s *FirebaseService) SignOut(ctx context.Context, idToken string) error {
	claims, err := s.ValidateToken(ctx, idToken)
	if err != nil {
		return err
	}

	if err := s.verifier.RevokeRefreshTokens(ctx, claims.OwnerID); err != nil {
		return NewOwnerAuthError(ErrExternalService, apiErrors.ErrExternalService, claims.OwnerID, err.Error())
	}

	s.broker.publish(ctx, loggedOut(claims.OwnerID))

	log.L.WithContext(ctx).WithField("owner_id", claims.OwnerID).Info("Logout realizado")
	return nil
}
