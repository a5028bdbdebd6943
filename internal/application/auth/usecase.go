package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/application/session"
	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
	"github.com/jhoicas/caminvoice-api/internal/domain/repository"
	"github.com/jhoicas/caminvoice-api/pkg/jwt"
)

// MinPasswordLength longitud mínima de contraseña en el registro.
const MinPasswordLength = 8

// MsgPasswordTooShort mensaje de validación del registro.
const MsgPasswordTooShort = "password must be at least 8 characters"

// DefaultRedirect destino tras el login cuando no se pidió ninguno (o no es seguro).
const DefaultRedirect = "/"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

func (c JWTConfig) ttl() time.Duration {
	if c.ExpMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.ExpMinutes) * time.Minute
}

// Sessions puerto del store de sesiones (session.Store).
type Sessions interface {
	SignIn(ctx context.Context, id session.Identity) error
	Current(ctx context.Context, sessionID string) (*session.Identity, error)
	Clear(ctx context.Context, sessionID string) error
}

// AuthUseCase casos de uso de autenticación: registro, login, logout y sesión actual.
type AuthUseCase struct {
	userRepo repository.UserRepository
	sessions Sessions
	jwtCfg   JWTConfig
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, sessions Sessions, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, sessions: sessions, jwtCfg: jwtCfg, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste. Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(in.Email)
	var msgs []string
	if !invoicing.IsValidEmail(email) {
		msgs = append(msgs, invoicing.MsgValidEmailRequired)
	}
	if len(in.Password) < MinPasswordLength {
		msgs = append(msgs, MsgPasswordTooShort)
	}
	if err := domain.NewValidationError(msgs); err != nil {
		return nil, err
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID).Msg("usuario registrado")
	return toUserResponse(user), nil
}

// Login verifica email/password, abre una sesión, genera el JWT y retorna token + usuario + destino.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}

	id := session.Identity{
		SessionID: uuid.New().String(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		ExpiresAt: uc.now().Add(uc.jwtCfg.ttl()).UTC().Truncate(time.Second),
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, id.SessionID, user.Email, uc.jwtCfg.Issuer, id.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.SignIn(ctx, id); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("no se pudo abrir la sesión")
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: id.ExpiresAt,
		User:      *toUserResponse(user),
		Redirect:  SafeRedirect(in.Redirect),
	}, nil
}

// Logout cierra la sesión en todas las instancias.
func (uc *AuthUseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrUnauthorized
	}
	return uc.sessions.Clear(ctx, sessionID)
}

// Authenticate valida el token y devuelve la identidad de su sesión.
// Un token bien firmado cuya sesión ya no existe (logout) es ErrUnauthorized.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*session.Identity, error) {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	id, err := uc.sessions.Current(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if id == nil || id.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return id, nil
}

// Me devuelve la sesión actual.
func (uc *AuthUseCase) Me(id *session.Identity) (*dto.SessionResponse, error) {
	if id == nil {
		return nil, domain.ErrUnauthorized
	}
	return &dto.SessionResponse{
		SessionID: id.SessionID,
		UserID:    id.UserID,
		Email:     id.Email,
		Name:      id.Name,
		ExpiresAt: id.ExpiresAt,
	}, nil
}

// SafeRedirect acepta solo rutas locales ("/x", no "//host" ni URLs absolutas).
func SafeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return DefaultRedirect
	}
	return target
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
