package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/marcus/shelf/internal/catalog"
	"github.com/marcus/shelf/internal/catalogclient"
	"github.com/marcus/shelf/internal/config"
	"github.com/marcus/shelf/internal/history"
	"github.com/marcus/shelf/internal/output"
	"github.com/marcus/shelf/internal/session"
	"github.com/marcus/shelf/internal/webhook"
	"github.com/spf13/cobra"
)

// app is everything a command needs to talk to the catalog
type app struct {
	ctrl    *catalog.Controller
	client  *catalogclient.Client
	store   *session.FileStore
	history *history.Recorder
	webhook *webhook.Notifier
}

const webhookFlushTimeout = 10 * time.Second

type appOptions struct {
	query    catalog.Query
	onChange func(catalog.Snapshot)
	// notifier replaces terminal output of notifications (the browser
	// renders them itself)
	notifier catalog.Notifier
}

// openApp builds the controller from config, the saved session and
// preferences. Call Close when done.
func openApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	store := session.NewFileStore(dir)
	sess, err := store.LoadSession()
	if err != nil {
		slog.Warn("load session", "err", err)
	}
	prefs, err := store.LoadPreferences()
	if err != nil {
		slog.Warn("load preferences", "err", err)
	}

	client := catalogclient.New(serverURL(cmd))
	client.HTTP.Timeout = config.GetTimeout()
	if versionStr != "" {
		client.UserAgent = "shelf/" + versionStr
	}

	var notifiers catalog.MultiNotifier
	if opts.notifier != nil {
		notifiers = append(notifiers, opts.notifier)
	} else {
		notifiers = append(notifiers, &output.Notifier{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()})
	}

	var rec *history.Recorder
	if config.GetHistoryEnabled() {
		rec, err = history.Open(dir)
		if err != nil {
			slog.Warn("open history", "err", err)
			rec = nil
		} else {
			notifiers = append(notifiers, rec)
		}
	}

	hook := webhook.FromConfig(client.BaseURL)
	if hook != nil {
		notifiers = append(notifiers, hook)
	}

	ctrl := catalog.New(client, catalog.Options{
		Debounce:     config.GetDebounce(),
		DefaultCount: config.GetDefaultCount(),
		Notifier:     notifiers,
		OnChange:     opts.onChange,
		Session:      sess,
		Preferences:  prefs,
		Store:        store,
		Query:        opts.query,
	})
	if rec != nil {
		rec.SetIdentity(func() string { return ctrl.Session().Email })
	}
	if hook != nil {
		hook.SetIdentity(func() string { return ctrl.Session().Email })
	}

	slog.Debug("app: ready", "server", client.BaseURL, "signed_in", sess.SignedIn())
	return &app{ctrl: ctrl, client: client, store: store, history: rec, webhook: hook}, nil
}

// Close stops the controller, delivers queued webhook events and closes
// the activity log
func (a *app) Close() {
	a.ctrl.Close()
	if a.webhook != nil {
		ctx, cancel := context.WithTimeout(context.Background(), webhookFlushTimeout)
		if err := a.webhook.Flush(ctx); err != nil {
			slog.Warn("webhook delivery failed", "err", err)
		}
		cancel()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			slog.Warn("close history", "err", err)
		}
	}
}

// serverURL returns --server when given, otherwise the configured URL
func serverURL(cmd *cobra.Command) string {
	if cmd.Flags().Changed("server") {
		if v, _ := cmd.Flags().GetString("server"); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return config.GetServerURL()
}

// commandContext returns the command's context or a background one
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseBookID parses a positional book id
func parseBookID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid book id %q", s)
	}
	return id, nil
}

// errorCode classifies err for JSON output
func errorCode(err error) string {
	var apiErr *catalogclient.APIError
	switch {
	case errors.Is(err, catalog.ErrNotSignedIn):
		return output.ErrCodeNotSignedIn
	case errors.Is(err, catalogclient.ErrUnauthorized):
		return output.ErrCodeUnauthorized
	case catalogclient.IsTransport(err):
		return output.ErrCodeUnreachable
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		return output.ErrCodeNotFound
	case errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError:
		return output.ErrCodeInvalidInput
	}
	return output.ErrCodeServerError
}

// jsonError prints err in the structured error format and marks it reported
func jsonError(cmd *cobra.Command, err error) error {
	msg := err.Error()
	if serverMsg, ok := catalogclient.ServerMessage(err); ok {
		msg = serverMsg
	}
	output.WriteJSONError(cmd.OutOrStdout(), errorCode(err), msg, nil)
	return reported(err)
}

// quietNotifier only reports errors, on stderr. Used with --json so stdout
// stays machine readable.
func quietNotifier(cmd *cobra.Command) catalog.Notifier {
	return &output.Notifier{Err: cmd.ErrOrStderr()}
}
