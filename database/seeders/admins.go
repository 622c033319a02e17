package seeders

import (
	"fmt"
	"strings"
	"time"

	"parcel-delivery/constants"
	"parcel-delivery/logger"
	"parcel-delivery/models/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedAdmins makes sure every email in emails exists with the admin role.
// Admin rights can otherwise only be granted by an existing admin, so at
// least one has to come from configuration.
func SeedAdmins(db *gorm.DB, emails []string) error {
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}

		now := time.Now()
		admin := user.User{
			Email:     email,
			Role:      constants.RoleAdmin,
			CreatedAt: now,
			LastLogin: now,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"role": constants.RoleAdmin}),
		}).Create(&admin).Error
		if err != nil {
			return fmt.Errorf("seed admin %s: %w", email, err)
		}
		logger.Info("Admin role ensured for " + email)
	}
	return nil
}
