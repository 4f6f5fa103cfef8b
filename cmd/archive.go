/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/forumhub/apiserver/internal/services"
	"github.com/forumhub/apiserver/internal/storage"
	"github.com/spf13/cobra"
)

// archiveCmd inspects comments archived by the delete-comment moderation action.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect archived moderation snapshots",
}

var archiveGetCmd = &cobra.Command{
	Use:   "get <commentId>",
	Short: "Print the archived snapshot of a deleted comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive(cmd)
		if err != nil {
			return err
		}
		rc, err := archive.Get(cmd.Context(), services.ArchiveKey(args[0]))
		if err != nil {
			return err
		}
		defer rc.Close()
		_, err = io.Copy(os.Stdout, rc)
		return err
	},
}

var archivePurgeCmd = &cobra.Command{
	Use:   "purge <commentId>",
	Short: "Delete the archived snapshot of a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive(cmd)
		if err != nil {
			return err
		}
		return archive.Delete(cmd.Context(), services.ArchiveKey(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveGetCmd, archivePurgeCmd)
}

func openArchive(cmd *cobra.Command) (*storage.Storage, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	archive, err := storage.Open(cmd.Context(), cfg.Storage)
	if err != nil {
		return nil, err
	}
	if archive == nil {
		return nil, errors.New("STORAGE_BACKEND is not configured")
	}
	return archive, nil
}
