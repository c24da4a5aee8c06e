// Command verify_roles prints every role with its grants and flags grants
// that match nothing in the permission catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"p9e.in/gemstock/config"
	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
	"p9e.in/gemstock/utils"
)

func main() {
	envFile := flag.String("env", "", "Path to an env file (default ./.env)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal("config: ", err)
	}
	if cfg.Storage == config.StorageMemory {
		log.Fatal("STORAGE=memory has no persisted roles to verify")
	}
	db, err := config.Connect(cfg, zap.NewNop())
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	stores := config.NewGormStores(db)

	ctx := context.Background()
	roles, err := stores.Roles.List(ctx, crud.Query{})
	if err != nil {
		log.Fatal("list roles: ", err)
	}
	users, err := stores.Users.List(ctx, crud.Query{})
	if err != nil {
		log.Fatal("list users: ", err)
	}
	catalog := config.PermissionCatalog()

	fmt.Println("========================================")
	fmt.Println("VERIFICATION: Role Permissions")
	fmt.Println("========================================")

	problems := 0
	for _, role := range roles {
		state := "active"
		if !role.IsActive {
			state = "inactive"
		}
		fmt.Printf("\nRole: %s (ID: %d, %s, %d users)\n", role.Name, role.ID, state, countUsers(users, role.ID))
		for _, p := range role.Permissions {
			n := covered(catalog, p)
			mark := "ok"
			if n == 0 {
				mark = "UNKNOWN"
				problems++
			}
			fmt.Printf("  %-8s %-24s covers %d\n", mark, p, n)
		}
	}

	fmt.Printf("\nRoles: %d, users: %d, unknown grants: %d\n", len(roles), len(users), problems)
}

func covered(catalog []models.Permission, granted string) int {
	n := 0
	for _, c := range catalog {
		if utils.MatchesPermission(granted, c.ID) {
			n++
		}
	}
	return n
}

func countUsers(users []models.User, roleID uint) int {
	n := 0
	for _, u := range users {
		if u.RoleID == roleID {
			n++
		}
	}
	return n
}
