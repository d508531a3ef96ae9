// Package demo declares the record types the ormkit command works with.
package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/koba/ormkit/internal/schema"
	"github.com/koba/ormkit/record"
)

type User struct {
	record.Base
	ID           record.Field[int64]
	Name         record.Field[string]
	Age          record.Field[*float64]
	PasswordHash record.Field[string]

	// Password is not stored. Saving a user with a password stores its
	// bcrypt hash and clears it.
	Password string
}

func (u *User) Define(d *record.Definition) {
	d.Column("id", &u.ID, record.Increments(record.PrimaryKey()))
	d.Column("name", &u.Name, record.Text())
	d.Column("age", &u.Age, record.Real(record.Nullable()))
	d.Column("passwordHash", &u.PasswordHash, record.Text(record.Nullable()))
	d.Association("posts", record.HasMany[Post]())
}

func (u *User) Initialize() {
	u.On(record.EventSave, u.hashPassword)
}

func (u *User) hashPassword(ctx context.Context) error {
	if u.Password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash.Set(string(hash))
	u.Password = ""
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash.Get() == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash.Get()), []byte(password)) == nil
}

func (u *User) Posts(ctx context.Context) ([]*Post, error) {
	return record.Where[Post](record.Values{"userId": u.ID.Get()}).All(ctx)
}

type Post struct {
	record.Base
	ID    record.Field[int64]
	Title record.Field[string]
	Body  record.Field[string]
}

func (p *Post) Define(d *record.Definition) {
	d.Column("id", &p.ID, record.Increments(record.PrimaryKey()))
	d.Column("title", &p.Title, record.String())
	d.Column("body", &p.Body, record.Text(record.Nullable()))
	d.Association("user", record.BelongsTo[User]())
}

func (p *Post) SetUser(u *User) error {
	return p.Set("userId", u.ID.Get())
}

// UserID returns the id of the post's author.
func (p *Post) UserID() (int64, bool) {
	v, ok := p.Get("userId")
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func (p *Post) User(ctx context.Context) (*User, error) {
	id, ok := p.UserID()
	if !ok {
		return nil, errors.New("post has no user")
	}
	return record.Find[User](id).One(ctx)
}

// Tables returns the tables of the demo types, referenced tables first.
func Tables() ([]*schema.TableSchema, error) {
	users, err := record.Synthesize[User]()
	if err != nil {
		return nil, err
	}
	posts, err := record.Synthesize[Post]()
	if err != nil {
		return nil, err
	}
	return []*schema.TableSchema{users, posts}, nil
}

// Preload defines the demo types and synchronizes their tables.
func Preload(ctx context.Context) error {
	if err := record.Preload[User](ctx); err != nil {
		return err
	}
	return record.Preload[Post](ctx)
}

// Run saves a user with a post, reads both back and logs what it found.
func Run(ctx context.Context, logger *slog.Logger) error {
	if err := Preload(ctx); err != nil {
		return err
	}

	u, err := record.Create[User](record.Values{"name": "jordan"})
	if err != nil {
		return err
	}
	u.Password = "hunter2"
	if err := u.Save(ctx); err != nil {
		return err
	}
	logger.Info("user saved", "id", u.ID.Get())

	p, err := record.Create[Post](record.Values{"title": "hello", "body": "first post"})
	if err != nil {
		return err
	}
	if err := p.SetUser(u); err != nil {
		return err
	}
	if err := p.Save(ctx); err != nil {
		return err
	}

	found, err := record.Find[User](u.ID.Get()).One(ctx)
	if err != nil {
		return err
	}
	posts, err := found.Posts(ctx)
	if err != nil {
		return err
	}
	logger.Info("user found",
		"id", found.ID.Get(),
		"name", found.Name.Get(),
		"posts", len(posts),
		"password_ok", found.CheckPassword("hunter2"))
	return nil
}
