package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a role hierarchy and sample leads for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			fmt.Println("Clearing existing data...")
			for _, table := range []string{"activities", "lead_histories", "leads", "user_roles", "roles", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		for _, role := range []string{"superadmin", "manager", "supervisor", "agent"} {
			if err := db.Exec(
				"INSERT INTO roles (name, created_at) VALUES (?, now()) ON CONFLICT (name) DO NOTHING",
				role).Error; err != nil {
				log.Fatalf("failed to seed role %s: %v", role, err)
			}
		}

		adminID := seedUser(db, "admin@mail.com", "Asep Admin", string(hash), nil, nil, "superadmin")
		managerID := seedUser(db, "manager@mail.com", "Bella Manager", string(hash), nil, nil, "manager")
		supervisorID := seedUser(db, "supervisor@mail.com", "Citra Supervisor", string(hash), &managerID, nil, "supervisor")
		agentOneID := seedUser(db, "agent1@mail.com", "Dimas Agent", string(hash), &managerID, &supervisorID, "agent")
		agentTwoID := seedUser(db, "agent2@mail.com", "Eka Agent", string(hash), &managerID, &supervisorID, "agent")

		fmt.Println("Seeded hierarchy:",
			"superadmin", adminID,
			"manager", managerID,
			"supervisor", supervisorID,
			"agents", agentOneID, agentTwoID)

		now := time.Now()
		samples := []struct {
			name     string
			priority string
			status   string
			assigned *int64
			ageDays  int
		}{
			{"Putri Ayu", "Cold", "New Inquiry", &agentOneID, 40},
			{"Bagus Santoso", "Warm", "Interested", &agentOneID, 25},
			{"Rina Wati", "Hot", "Negotiation", &agentTwoID, 10},
			{"Joko Susilo", "Booking", "Down Payment Pending", &agentTwoID, 5},
			{"Maya Lestari", "Closing", "Handover Done", &agentOneID, 2},
			{"Andi Pratama", "Lost", "Unreachable", nil, 60},
		}

		for _, s := range samples {
			var exists int
			row := db.Raw("SELECT 1 FROM leads WHERE name = ?", s.name).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}

			createdAt := now.AddDate(0, 0, -s.ageDays)
			if err := db.Exec(
				`INSERT INTO leads (name, priority, status, assigned_to, created_by, manager_id, supervisor_id, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				s.name, s.priority, s.status, s.assigned, supervisorID, managerID, supervisorID, createdAt, createdAt,
			).Error; err != nil {
				log.Fatalf("failed to seed lead %s: %v", s.name, err)
			}
			fmt.Println("Seeded lead:", s.name)
		}

		fmt.Println("Seeding complete. All users log in with password: password")
	},
}

func seedUser(db *gorm.DB, email, name, passwordHash string, managerID, supervisorID *int64, role string) int64 {
	var id int64
	row := db.Raw("SELECT id FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&id); err == nil {
		fmt.Println("user already exists:", email)
		return id
	}

	if err := db.Exec(
		`INSERT INTO users (email, name, password_hash, manager_id, supervisor_id, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, true, now(), now())`,
		email, name, passwordHash, managerID, supervisorID,
	).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}

	row = db.Raw("SELECT id FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&id); err != nil {
		log.Fatalf("failed to read back user %s: %v", email, err)
	}

	if err := db.Exec(
		`INSERT INTO user_roles (user_id, role_id, granted_by, created_at)
		 SELECT ?, id, NULL, now() FROM roles WHERE name = ?`,
		id, role,
	).Error; err != nil {
		log.Fatalf("failed to grant role %s to %s: %v", role, email, err)
	}

	fmt.Println("Seeded user:", email, "role:", role)
	return id
}
