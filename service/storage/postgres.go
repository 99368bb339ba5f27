package storage

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// OpenPool connects to PostgreSQL and verifies the connection.
func OpenPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to database")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return pool, nil
}

// Migrate creates the tables the gateway reads and writes.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return errors.Wrap(err, "apply schema")
}

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Close() { s.pool.Close() }

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PgStore) Room(ctx context.Context, id int64) (Room, error) {
	var r Room
	err := s.pool.QueryRow(ctx,
		`SELECT id, subject, scope, COALESCE(creator_id, 0), updated_at FROM rooms WHERE id=$1`, id,
	).Scan(&r.ID, &r.Subject, &r.Scope, &r.CreatorID, &r.UpdatedAt)
	if err != nil {
		return Room{}, errors.WithMessagef(notFound(err), "room %d", id)
	}
	return r, nil
}

func (s *PgStore) Member(ctx context.Context, userID, roomID int64) (Member, error) {
	var m Member
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, room_id, banned, last_msg_seen_id FROM members WHERE user_id=$1 AND room_id=$2`,
		userID, roomID,
	).Scan(&m.ID, &m.UserID, &m.RoomID, &m.Banned, &m.LastMsgSeenID)
	if err != nil {
		return Member{}, errors.WithMessagef(notFound(err), "member user=%d room=%d", userID, roomID)
	}
	return m, nil
}

func (s *PgStore) BanMember(ctx context.Context, memberID int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE members SET banned=true WHERE id=$1`, memberID)
	return errors.Wrapf(err, "ban member %d", memberID)
}

func (s *PgStore) JoinRoom(ctx context.Context, userID, roomID int64) (bool, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO members (user_id, room_id, last_msg_seen_id)
		 VALUES ($1, $2, (SELECT max(id) FROM messages WHERE room_id=$2))
		 ON CONFLICT (user_id, room_id) DO NOTHING
		 RETURNING id`,
		userID, roomID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "join room user=%d room=%d", userID, roomID)
	}
	return true, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *PgStore) InsertMessage(ctx context.Context, in NewMessage) (Message, error) {
	out := Message{
		RoomID:   in.RoomID,
		AuthorID: &in.AuthorID,
		Text:     in.Text,
		Images:   in.Images,
		Videos:   in.Videos,
		Gif:      in.Gif,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (room_id, author_id, text, images, videos, gif)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		in.RoomID, in.AuthorID, nullable(in.Text), in.Images, in.Videos, nullable(in.Gif),
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return Message{}, errors.Wrapf(err, "insert message room=%d", in.RoomID)
	}
	return out, nil
}

func (s *PgStore) TouchRoom(ctx context.Context, roomID int64, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE rooms SET updated_at=$2 WHERE id=$1`, roomID, at)
	return errors.Wrapf(err, "touch room %d", roomID)
}

func (s *PgStore) User(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `SELECT id, name, image FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Image)
	if err != nil {
		return User{}, errors.WithMessagef(notFound(err), "user %d", id)
	}
	return u, nil
}

func (s *PgStore) MessageRoom(ctx context.Context, msgID int64) (int64, error) {
	var roomID int64
	err := s.pool.QueryRow(ctx, `SELECT room_id FROM messages WHERE id=$1`, msgID).Scan(&roomID)
	if err != nil {
		return 0, errors.WithMessagef(notFound(err), "message %d", msgID)
	}
	return roomID, nil
}

func (s *PgStore) SetLastSeen(ctx context.Context, userID, roomID, msgID int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE members SET last_msg_seen_id=$1 WHERE room_id=$2 AND user_id=$3`,
		msgID, roomID, userID,
	)
	return errors.Wrapf(err, "set last seen user=%d room=%d", userID, roomID)
}
