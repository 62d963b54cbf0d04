package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agustogpt/chatstore/pkg/chatid"
	"github.com/agustogpt/chatstore/pkg/flags"
	"github.com/agustogpt/chatstore/pkg/sessionstore"
)

// NewSessionsCommand groups operator commands for inspecting and removing stored chats.
func NewSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage stored chat sessions",
	}
	cmd.AddCommand(
		newSessionsNewIDCommand(),
		newSessionsListCommand(),
		newSessionsShowCommand(),
		newSessionsDeleteCommand(),
	)
	return cmd
}

type sessionFlags struct {
	storage *flags.StorageFlags
	user    string
	output  string
}

func newSessionFlags(cmd *cobra.Command, defaultOutput string) *sessionFlags {
	f := &sessionFlags{storage: flags.NewStorageFlags()}
	f.storage.BindFlags(cmd.Flags())
	cmd.Flags().StringVar(&f.user, "user", "", "User (partition) that owns the sessions")
	if defaultOutput != "" {
		cmd.Flags().StringVarP(&f.output, "output", "o", defaultOutput, "Output format; available options are 'table', 'json' and 'yaml'")
	}
	return f
}

// manager returns an enabled manager or an error explaining why persistence is unavailable.
func (f *sessionFlags) manager(ctx context.Context) (*sessionstore.Manager, error) {
	if err := sessionstore.ValidateKey("--user", f.user); err != nil {
		return nil, err
	}
	objects, records, err := f.storage.GetStores(ctx)
	if err != nil {
		return nil, err
	}
	return sessionstore.New(objects, records,
		sessionstore.WithTimeout(f.storage.OperationTimeout),
		sessionstore.WithMaxSessionBytes(f.storage.MaxSessionBytes),
	), nil
}

func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, string(out))
		return err
	}
	return errors.Errorf("invalid output format: %s", format)
}

func newSessionsNewIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:              "new-id",
		Short:            "Print a fresh chat id",
		Args:             cobra.NoArgs,
		PersistentPreRun: NoPrintVersion,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(os.Stdout, chatid.New())
		},
	}
}

func newSessionsListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's chat sessions, most recently updated first",
		Args:  cobra.NoArgs,
	}
	f := newSessionFlags(cmd, "table")
	cmd.Flags().IntVar(&limit, "limit", sessionstore.DefaultListLimit, "Maximum number of sessions to list")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		m, err := f.manager(cmd.Context())
		if err != nil {
			return errors.WithMessage(err, "chat persistence unavailable")
		}
		summaries, err := m.Backend().List(cmd.Context(), f.user, limit)
		if err != nil {
			return errors.WithMessagef(err, "could not list sessions for %s", f.user)
		}
		if f.output != "table" {
			return writeStructured(os.Stdout, f.output, summaries)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CHAT ID\tTITLE\tMESSAGES\tUPDATED\tMODE")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.ChatID, s.Title, s.MessageCount, s.UpdatedAt.Format(time.RFC3339), s.SearchMode)
		}
		return tw.Flush()
	}
	return cmd
}

func newSessionsShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show CHAT_ID",
		Short: "Print a stored chat transcript",
		Args:  cobra.ExactArgs(1),
	}
	f := newSessionFlags(cmd, "json")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		m, err := f.manager(cmd.Context())
		if err != nil {
			return errors.WithMessage(err, "chat persistence unavailable")
		}
		session, err := m.Backend().Load(cmd.Context(), args[0], f.user)
		if err != nil {
			return errors.WithMessagef(err, "could not load session %s", args[0])
		}
		return writeStructured(os.Stdout, f.output, session)
	}
	return cmd
}

func newSessionsDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete CHAT_ID",
		Short: "Delete a chat transcript and its index record",
		Args:  cobra.ExactArgs(1),
	}
	f := newSessionFlags(cmd, "")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		m, err := f.manager(cmd.Context())
		if err != nil {
			return errors.WithMessage(err, "chat persistence unavailable")
		}
		if err := m.Backend().Delete(cmd.Context(), args[0], f.user); err != nil {
			return errors.WithMessagef(err, "could not delete session %s", args[0])
		}
		fmt.Fprintf(os.Stdout, "deleted %s\n", args[0])
		return nil
	}
	return cmd
}
