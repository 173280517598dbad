package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/keyring"
	"github.com/julianstephens/innerlevel/internal/storage/sqlstore"
)

// KeyringSetCmd stores a secret in the OS keyring
type KeyringSetCmd struct {
	Entry string `arg:"" help:"Entry to set: db (PostgreSQL connection string) or insight (endpoint token)."`
	Value string `arg:"" help:"Secret value."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	entry, err := keyring.ParseEntry(cmd.Entry)
	if err != nil {
		return err
	}
	if entry == keyring.ConnectionString {
		if !sqlstore.IsPostgresURL(cmd.Value) && !strings.Contains(cmd.Value, "host=") {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if err := sqlstore.ValidateConnString(cmd.Value); err != nil {
			if !errors.Is(err, sqlstore.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			ctx.Println(cli.WarningStyle.Render("Warning: connection string contains embedded credentials."))
			ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(entry, cmd.Value); err != nil {
		return err
	}
	ctx.Printf("✓ %s stored in OS keyring\n", entry)
	return nil
}

// KeyringGetCmd shows a stored secret with its password masked
type KeyringGetCmd struct {
	Entry string `arg:"" help:"Entry to show: db or insight."`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	entry, err := keyring.ParseEntry(cmd.Entry)
	if err != nil {
		return err
	}
	v, err := keyring.Get(entry)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'innerlevel keyring set %s' to store one", entry, cmd.Entry)
		}
		return err
	}
	if entry == keyring.InsightToken {
		ctx.Println(maskToken(v))
		return nil
	}
	ctx.Println(maskPassword(v))
	return nil
}

// KeyringDeleteCmd removes a secret from the OS keyring
type KeyringDeleteCmd struct {
	Entry string `arg:"" help:"Entry to delete: db or insight."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	entry, err := keyring.ParseEntry(cmd.Entry)
	if err != nil {
		return err
	}
	if err := keyring.Delete(entry); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", entry)
		}
		return err
	}
	ctx.Printf("✓ %s deleted from OS keyring\n", entry)
	return nil
}

// KeyringStatusCmd reports keyring availability and which entries are set
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyringAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring is available")
	for _, e := range keyring.Entries {
		if _, err := keyring.Get(e); err == nil {
			ctx.Printf("✓ %s is stored\n", e)
		} else {
			ctx.Printf("ℹ No %s stored\n", e)
		}
	}
	return nil
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if sqlstore.IsPostgresURL(connStr) {
		idx := strings.Index(connStr, "://")
		remaining := connStr[idx+3:]
		if at := strings.LastIndex(remaining, "@"); at != -1 {
			userInfo := remaining[:at]
			if colon := strings.Index(userInfo, ":"); colon != -1 {
				return connStr[:idx+3] + userInfo[:colon] + ":****" + remaining[at:]
			}
		}
		return connStr
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}

// maskToken keeps the last four characters of tokens long enough to have
// them.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
