package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/masterdata"
	"github.com/strideworks/erp-core/pkg/permissions"
)

var (
	seedUsername string
	seedPassword string
	seedFullName string
	seedBranches string
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the initial administrator account",
	Long: `seed-admin creates an admin role (if none exists) and a user attached
to it. Branch memberships are granted by branch code; the branches must
already exist. Fails if the username is taken.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedUsername == "" || seedPassword == "" {
			return errors.New("--username and --password are required")
		}

		gdb, err := openDB()
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		var branchIDs []int64
		if seedBranches != "" {
			codes := strings.Split(seedBranches, ",")
			for i := range codes {
				codes[i] = strings.TrimSpace(codes[i])
			}
			var branches []masterdata.Branch
			if err := gdb.Where("code IN ?", codes).Find(&branches).Error; err != nil {
				return fmt.Errorf("look up branches: %w", err)
			}
			found := make(map[string]int64, len(branches))
			for _, b := range branches {
				found[b.Code] = b.ID
			}
			for _, code := range codes {
				id, ok := found[code]
				if !ok {
					return fmt.Errorf("branch %q does not exist", code)
				}
				branchIDs = append(branchIDs, id)
			}
		}

		var userID int64
		err = gdb.Transaction(func(tx *gorm.DB) error {
			var role permissions.Role
			err := tx.Where("is_admin = ?", true).First(&role).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				role = permissions.Role{
					Name:        "Administrator",
					Description: "Full access to all screens and approvals",
					IsAdmin:     true,
				}
				if err := tx.Create(&role).Error; err != nil {
					return fmt.Errorf("create admin role: %w", err)
				}
			} else if err != nil {
				return fmt.Errorf("look up admin role: %w", err)
			}

			user := permissions.User{
				Username:      seedUsername,
				PasswordHash:  string(hash),
				FullName:      seedFullName,
				PrimaryRoleID: role.ID,
			}
			if err := tx.Create(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("username %q already exists", seedUsername)
				}
				return fmt.Errorf("create user: %w", err)
			}
			for _, branchID := range branchIDs {
				ub := permissions.UserBranch{UserID: user.ID, BranchID: branchID}
				if err := tx.Create(&ub).Error; err != nil {
					return fmt.Errorf("grant branch membership: %w", err)
				}
			}
			userID = user.ID
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Printf("created admin user %q (id %d, %d branches)\n", seedUsername, userID, len(branchIDs))
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedUsername, "username", "", "Username for the admin account")
	seedAdminCmd.Flags().StringVar(&seedPassword, "password", "", "Password for the admin account")
	seedAdminCmd.Flags().StringVar(&seedFullName, "full-name", "", "Display name")
	seedAdminCmd.Flags().StringVar(&seedBranches, "branches", "", "Comma-separated branch codes to grant membership in")

	rootCmd.AddCommand(seedAdminCmd)
}
