package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/Jdholguin19/tareas/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, login string) (*models.User, error)

	// refresh helpers
	UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
	RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error)
	ClearRefresh(ctx context.Context, userID int64) error

	// telegram helpers
	GetTelegramSettings(ctx context.Context, userID int64) (chatID int64, notify bool, err error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password_hash,
       refresh_token, refresh_expires_at, refresh_revoked,
       telegram_chat_id, notify_telegram, fecha_creacion`

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO usuarios (username, email, password_hash, fecha_creacion)
		VALUES ($1,$2,$3,NOW())
		RETURNING id, fecha_creacion`
	return r.db.QueryRowContext(ctx, q,
		user.Username, user.Email, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id)
}

// GetByUsernameOrEmail allows login by either identifier, like the
// original login flow.
func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, login string) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE username = $1 OR email = $1 LIMIT 1`, login)
}

func (r *userRepository) UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE usuarios SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE WHERE id=$3`,
		token, expiresAt, userID)
	return err
}

func (r *userRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM usuarios WHERE refresh_token = $1`, token)
}

// RotateRefresh swaps the stored refresh token in a single statement,
// so a replayed old token cannot race the rotation.
func (r *userRepository) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	return r.getOne(ctx, `
		UPDATE usuarios
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3 AND refresh_revoked=FALSE
		RETURNING `+userColumns,
		newToken, expiresAt, oldToken)
}

func (r *userRepository) ClearRefresh(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE usuarios SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=TRUE WHERE id=$1`,
		userID)
	return err
}

func (r *userRepository) GetTelegramSettings(ctx context.Context, userID int64) (int64, bool, error) {
	var (
		chatID sql.NullInt64
		notify bool
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT telegram_chat_id, notify_telegram FROM usuarios WHERE id = $1`, userID,
	).Scan(&chatID, &notify)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return chatID.Int64, notify, nil
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	var (
		email     sql.NullString
		refresh   sql.NullString
		refreshAt sql.NullTime
		chatID    sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Username, &email, &user.PasswordHash,
		&refresh, &refreshAt, &user.RefreshRevoked,
		&chatID, &user.NotifyTelegram, &user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	user.Email = email.String
	if refresh.Valid {
		user.RefreshToken = &refresh.String
	}
	if refreshAt.Valid {
		user.RefreshExpiresAt = &refreshAt.Time
	}
	user.TelegramChatID = chatID.Int64
	return user, nil
}
