package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/commitfind/internal/store"
)

var statusProject string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a project's indexing lock and error log",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusProject, "project", "", "project name (required)")
	_ = statusCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.New(cfg.BaseDir, statusProject)
	lock := store.NewLock(st.Layout)
	held, elapsed, err := lock.Status()
	if err != nil {
		return err
	}

	if held {
		fmt.Printf("locked: indexing in progress (%s elapsed)\n", elapsed.Round(time.Second))
	} else {
		fmt.Println("not locked")
	}

	errorLog, err := st.ReadErrorLog()
	if err != nil {
		return err
	}
	if errorLog != "" {
		fmt.Println("\nerror log:")
		fmt.Print(errorLog)
	}
	return nil
}
