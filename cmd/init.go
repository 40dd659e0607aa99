package cmd

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/flashseed/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a flashseed config file",
	Long:  `Create ` + config.FileName + ` with default seeding options and add the database URL variable to .env.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := "postgresql"
		flagCount := 0

		if sqliteFlag {
			provider = "sqlite"
			flagCount++
		}
		if postgresqlFlag {
			provider = "postgresql"
			flagCount++
		}
		if mysqlFlag {
			provider = "mysql"
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, or --mysql)")
		}

		if err := config.InitializeProject(provider); err != nil {
			return err
		}

		color.Green("✅ Created %s for %s", config.FileName, provider)
		fmt.Println()
		fmt.Printf("🚀 Next steps:\n")
		fmt.Printf("   edit .env                 # Point DATABASE_URL at your database\n")
		fmt.Printf("   flashseed order           # Preview the insertion order\n")
		fmt.Printf("   flashseed seed --rounds 5 # Insert five rows per table\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Initialize project for SQLite database")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Initialize project for PostgreSQL database")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Initialize project for MySQL database")
}
