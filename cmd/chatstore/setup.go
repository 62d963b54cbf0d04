package main

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agustogpt/chatstore/pkg/flags"
)

// NewSetupCommand creates the transcript container and index table. It is safe to run repeatedly.
func NewSetupCommand() *cobra.Command {
	f := flags.NewStorageFlags()

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the blob container and index table if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := f.GetStores(context.Background()); err != nil {
				return errors.WithMessage(err, "setup failed")
			}
			log.WithFields(log.Fields{
				"object_store": f.ObjectStore,
				"record_store": f.RecordStore,
				"container":    f.Container,
				"table":        f.Table,
			}).Info("storage is ready")
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
