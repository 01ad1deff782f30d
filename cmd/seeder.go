package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/valcriss/sovrane/internal/accesscontrol"
)

var seedAdminPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the permission catalog and a bootstrap admin",
	Long:  `Seed the permission catalog, a default site and department, and an administrator holding the root grant. Safe to run repeatedly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		seedPermissionCatalog(db)
		siteID := seedSite(db, "Headquarters")
		seedDepartment(db, "General", siteID)
		seedAdmin(db, siteID, seedAdminPassword, cfg.Security.BCryptCost)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "changeme", "password for the bootstrap admin user")
}

func seedPermissionCatalog(db *gorm.DB) {
	for _, key := range accesscontrol.AllKeys {
		var exists int
		row := db.Raw("SELECT 1 FROM permissions WHERE key = ?", string(key)).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}

		err := db.Exec(
			"INSERT INTO permissions (id, key, description, created_at, updated_at) VALUES (?, ?, ?, now(), now())",
			uuid.NewString(), string(key), "", // descriptions are maintained through the API
		).Error
		if err != nil {
			log.Fatalf("failed to insert permission %s: %v", key, err)
		}
	}
	fmt.Println("Permission catalog seeded")
}

func seedSite(db *gorm.DB, label string) string {
	var id string
	if err := db.Raw("SELECT id FROM sites WHERE label = ?", label).Row().Scan(&id); err == nil {
		return id
	}

	id = uuid.NewString()
	err := db.Exec(
		"INSERT INTO sites (id, label, created_at, updated_at, created_by, updated_by) VALUES (?, ?, now(), now(), 'seed', 'seed')",
		id, label,
	).Error
	if err != nil {
		log.Fatalf("failed to insert site %s: %v", label, err)
	}
	fmt.Println("Seeded site:", label)
	return id
}

func seedDepartment(db *gorm.DB, label, siteID string) {
	var exists int
	if err := db.Raw("SELECT 1 FROM departments WHERE label = ?", label).Row().Scan(&exists); err == nil {
		return
	}

	err := db.Exec(
		"INSERT INTO departments (id, label, site_id, created_at, updated_at, created_by, updated_by) VALUES (?, ?, ?, now(), now(), 'seed', 'seed')",
		uuid.NewString(), label, siteID,
	).Error
	if err != nil {
		log.Fatalf("failed to insert department %s: %v", label, err)
	}
	fmt.Println("Seeded department:", label)
}

func seedAdmin(db *gorm.DB, siteID, password string, bcryptCost int) {
	const adminEmail = "admin@sovrane.local"

	var adminID string
	if err := db.Raw("SELECT id FROM users WHERE email = ?", adminEmail).Row().Scan(&adminID); err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		adminID = uuid.NewString()
		err = db.Exec(
			"INSERT INTO users (id, email, name, password_hash, status, site_id, created_at, updated_at) VALUES (?, ?, 'Administrator', ?, 'active', ?, now(), now())",
			adminID, adminEmail, string(hash), siteID,
		).Error
		if err != nil {
			log.Fatalf("failed to insert admin user: %v", err)
		}
		fmt.Println("Seeded admin user:", adminEmail)
	}

	// The root grant makes every permission check pass for the admin.
	var exists int
	row := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_key = ?", adminID, string(accesscontrol.KeyRoot)).Row()
	if err := row.Scan(&exists); err == nil {
		return
	}

	err := db.Exec(
		"INSERT INTO user_permissions (user_id, permission_key, scope_id, deny) VALUES (?, ?, NULL, false)",
		adminID, string(accesscontrol.KeyRoot),
	).Error
	if err != nil {
		log.Fatalf("failed to grant root to admin user: %v", err)
	}
	fmt.Println("Granted root to admin user:", adminEmail)
}
