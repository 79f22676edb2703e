// Package auth registro y login de usuarios de la colección users.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/application/inventory"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
	"github.com/jhoicas/maquipaes-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// RegisterInput datos del usuario nuevo.
type RegisterInput struct {
	Email    string
	Password string
	Nombre   string
	Rol      string
}

// LoginResult token emitido y usuario sin hash.
type LoginResult struct {
	Token string
	User  entity.User
}

// UseCase casos de uso de autenticación.
type UseCase struct {
	txRunner inventory.TxRunner
	reader   inventory.Reader
	jwtCfg   JWTConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso de auth.
func NewUseCase(txRunner inventory.TxRunner, reader inventory.Reader, jwtCfg JWTConfig, log zerolog.Logger) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		reader:   reader,
		jwtCfg:   jwtCfg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validRole(r string) bool {
	switch r {
	case jwt.RoleAdmin, jwt.RoleOperador, jwt.RoleAuditor:
		return true
	}
	return false
}

// RegisterUser hashea el password con bcrypt y guarda el usuario. ErrDuplicate si el email
// ya está registrado.
func (uc *UseCase) RegisterUser(ctx context.Context, in RegisterInput) (entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return entity.User{}, fmt.Errorf("%w: email y password requeridos", domain.ErrInvalidInput)
	}
	role := in.Rol
	if role == "" {
		role = jwt.RoleOperador
	}
	if !validRole(role) {
		return entity.User{}, fmt.Errorf("%w: rol %q desconocido", domain.ErrInvalidInput, role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return entity.User{}, err
	}
	nombre := in.Nombre
	if nombre == "" {
		nombre = email
	}
	now := uc.now()
	user := entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		Nombre:       nombre,
		Rol:          role,
		PasswordHash: string(hash),
		Activo:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = uc.txRunner.Run(ctx, func(tx datasource.LedgerTx) error {
		rows, err := tx.List(ctx, entity.EntityUsers)
		if err != nil {
			return err
		}
		if _, found := findByEmail(rows, email); found {
			return domain.ErrDuplicate
		}
		return tx.Put(entity.EntityUsers, entity.SyncCreate, user.ID, user)
	})
	if err != nil {
		return entity.User{}, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("rol", user.Rol).Msg("usuario registrado")
	user.PasswordHash = ""
	return user, nil
}

// Login verifica email/password y emite un JWT con el rol del usuario.
func (uc *UseCase) Login(ctx context.Context, email, password string) (LoginResult, error) {
	rows, _, err := uc.reader.List(ctx, entity.EntityUsers)
	if err != nil {
		return LoginResult{}, err
	}
	user, found := findByEmail(rows, strings.ToLower(strings.TrimSpace(email)))
	if !found {
		return LoginResult{}, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, domain.ErrUnauthorized
	}
	if !user.Activo {
		return LoginResult{}, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Rol, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return LoginResult{}, err
	}
	user.PasswordHash = ""
	return LoginResult{Token: token, User: user}, nil
}

func findByEmail(rows []json.RawMessage, email string) (entity.User, bool) {
	users, _ := localstore.Decode[entity.User](rows)
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return entity.User{}, false
}
