package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/tandem/internal/config"
	"github.com/roach88/tandem/internal/engine"
	"github.com/roach88/tandem/internal/model"
	"github.com/roach88/tandem/internal/store"
)

// InspectOptions holds flags shared by the inspect subcommands.
type InspectOptions struct {
	*RootOptions
	Database string
	Policy   string
}

// UserView is one participant as shown by inspect users.
type UserView struct {
	ID           model.UserID `json:"id"`
	Welcomed     bool         `json:"welcomed"`
	Bio          *string      `json:"bio,omitempty"`
	ProfileImage string       `json:"profile_image,omitempty"`
	Prompt       string       `json:"prompt,omitempty"`
	MessageID    int64        `json:"message_id,omitempty"`
}

// UserList is the result of inspect users.
type UserList []UserView

// WriteText prints the users as a table.
func (l UserList) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWELCOMED\tBIO\tIMAGE\tPROMPT\tMESSAGE")
	for _, u := range l {
		bio := "-"
		if u.Bio != nil {
			bio = fmt.Sprintf("%q", *u.Bio)
		}
		image := orDash(u.ProfileImage)
		prompt := orDash(u.Prompt)
		msg := "-"
		if u.MessageID != 0 {
			msg = fmt.Sprintf("#%d", u.MessageID)
		}
		fmt.Fprintf(tw, "%d\t%t\t%s\t%s\t%s\t%s\n", u.ID, u.Welcomed, bio, image, prompt, msg)
	}
	return tw.Flush()
}

// LedgerView is one response row as shown by inspect ledger.
type LedgerView struct {
	Responder model.UserID `json:"responder"`
	Subject   model.UserID `json:"subject"`
	Accepted  bool         `json:"accepted"`
	Dismissed bool         `json:"dismissed"`
}

// Ledger is the result of inspect ledger.
type Ledger []LedgerView

// WriteText prints the ledger as a table.
func (l Ledger) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESPONDER\tSUBJECT\tRESPONSE\tDISMISSED")
	for _, e := range l {
		resp := "declined"
		if e.Accepted {
			resp = "accepted"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%t\n", e.Responder, e.Subject, resp, e.Dismissed)
	}
	return tw.Flush()
}

// PromptView is the result of inspect prompt.
type PromptView struct {
	User      model.UserID `json:"user"`
	Prompt    string       `json:"prompt"`
	MessageID int64        `json:"message_id"`
	Text      string       `json:"text"`
}

// WriteText prints the prompt header followed by its text.
func (p PromptView) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d: %s (message #%d)\n%s\n", p.User, p.Prompt, p.MessageID, p.Text)
	return err
}

// NewInspectCommand creates the inspect command and its subcommands.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show participants, responses and prompts in a database",
		Long: `Read-only views of a tandem database.

Examples:
  tandem inspect users --db ./tandem.db
  tandem inspect ledger --db ./tandem.db --format json
  tandem inspect prompt 42 --db ./tandem.db`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $TANDEM_DB_PATH or tandem.db)")
	cmd.PersistentFlags().StringVar(&opts.Policy, "policy", "", "path to a CUE policy file (default $TANDEM_POLICY_PATH)")

	cmd.AddCommand(&cobra.Command{
		Use:           "users",
		Short:         "List participants and their current prompts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, inspectUsers)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "ledger",
		Short:         "List recorded accept and decline responses",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, inspectLedger)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "prompt <user-id>",
		Short:         "Render a participant's current prompt",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseUserID(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid user id", err)
			}
			return runInspect(cmd, opts, func(ctx context.Context, e *engine.Engine, s *store.Store) (any, error) {
				return inspectPrompt(ctx, e, s, id)
			})
		},
	})

	return cmd
}

type inspectFunc func(ctx context.Context, e *engine.Engine, s *store.Store) (any, error)

func runInspect(cmd *cobra.Command, opts *InspectOptions, fn inspectFunc) error {
	f := opts.formatter(cmd)

	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}
	if opts.Policy != "" {
		cfg.PolicyPath = opts.Policy
	}
	pol, err := cfg.Policy()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load policy", err)
	}

	f.VerboseLog("Opening %s", cfg.DBPath)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := fn(ctx, engine.New(st, pol), st)
	if err != nil {
		code, exit := ErrCodeStore, ExitCommandError
		var inv *engine.InvariantError
		switch {
		case errors.Is(err, store.ErrNotFound):
			code, exit = ErrCodeNotFound, ExitFailure
		case errors.As(err, &inv):
			code, exit = ErrCodeInvalid, ExitFailure
		}
		if ferr := f.Error(code, err.Error(), nil); ferr != nil {
			return ferr
		}
		return WrapExitError(exit, "inspect failed", err)
	}
	return f.Success(data)
}

func inspectUsers(ctx context.Context, _ *engine.Engine, s *store.Store) (any, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}

	out := make(UserList, 0, len(users))
	for _, u := range users {
		v := UserView{ID: u.ID, Welcomed: u.Welcomed, Bio: u.Bio}
		if u.ProfileImage != nil {
			v.ProfileImage = u.ProfileImage.String()
		}
		if pm := u.PromptMessage; pm != nil {
			v.Prompt = pm.Prompt.String()
			v.MessageID = int64(pm.MessageID)
		}
		out = append(out, v)
	}
	return out, nil
}

func inspectLedger(ctx context.Context, _ *engine.Engine, s *store.Store) (any, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}

	out := make(Ledger, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerView{
			Responder: e.Responder,
			Subject:   e.Subject,
			Accepted:  e.Accepted,
			Dismissed: e.Dismissed,
		})
	}
	return out, nil
}

func inspectPrompt(ctx context.Context, e *engine.Engine, s *store.Store, id model.UserID) (any, error) {
	u, err := s.User(ctx, id)
	if err != nil {
		return nil, err
	}
	pm := u.PromptMessage
	if pm == nil {
		return nil, fmt.Errorf("user %d has not been prompted: %w", id, store.ErrNotFound)
	}

	text, err := e.PromptText(ctx, pm.Prompt)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", pm.Prompt, err)
	}
	return PromptView{
		User:      id,
		Prompt:    pm.Prompt.String(),
		MessageID: int64(pm.MessageID),
		Text:      text,
	}, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
