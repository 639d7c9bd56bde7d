package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arthurk12/racha-ai/internal/service"
	"github.com/Arthurk12/racha-ai/internal/storage/sqlite"
)

func init() {
	rootCmd.AddCommand(purgeCmd)
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete inactive groups once and exit",
	Long: `Delete every group whose last activity is older than the configured
retention window. Useful as a cron job when the server itself runs
with retention disabled.`,
	RunE: runPurge,
}

func runPurge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	maxAge := cfg.GroupMaxAge()
	if maxAge <= 0 {
		return fmt.Errorf("retention.max_group_age_days must be positive, got %d", cfg.Retention.MaxGroupAgeDays)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	groups := service.NewGroupService(store, nil)
	n, err := groups.PurgeInactive(cmd.Context(), maxAge)
	if err != nil {
		return err
	}

	fmt.Printf("purged %d inactive group(s)\n", n)
	return nil
}
