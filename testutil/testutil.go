// Package testutil holds helpers shared by package tests: an in-memory
// database with the production schema and a JWT signer that plays the
// identity provider.
package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"parcel-delivery/constants"
	"parcel-delivery/database"
	"parcel-delivery/models/user"
)

// NewDB opens a private in-memory SQLite database, migrates it and closes
// it when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, email, role string) user.User {
	t.Helper()

	now := time.Now()
	u := user.User{Email: email, Role: role, CreatedAt: now, LastLogin: now}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// CreateAdmin inserts a user holding the admin role.
func CreateAdmin(t *testing.T, db *gorm.DB, email string) user.User {
	t.Helper()
	return CreateUser(t, db, email, constants.RoleAdmin)
}

// Signer issues RS256 tokens the way the identity provider does.
type Signer struct {
	Key *rsa.PrivateKey
}

func NewSigner(t *testing.T) *Signer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return &Signer{Key: key}
}

// PublicKey returns the key a verifier should trust.
func (s *Signer) PublicKey() *rsa.PublicKey {
	return &s.Key.PublicKey
}

// Token returns a signed token for email valid for one hour.
func (s *Signer) Token(t *testing.T, email string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"email": email,
		"sub":   email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.Key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// BearerHeader returns the Authorization header value for email.
func (s *Signer) BearerHeader(t *testing.T, email string) string {
	t.Helper()
	return "Bearer " + s.Token(t, email)
}
