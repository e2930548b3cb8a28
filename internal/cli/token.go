package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/terraincognita07/medport/internal/security"
)

// RunIssueTokenCommand prints a bearer token for the API.
func RunIssueTokenCommand(out io.Writer, secret string, subject string, ttl time.Duration, now time.Time) error {
	if strings.TrimSpace(secret) == "" {
		return errors.New("auth.secret is not configured; the API runs without tokens")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "cli"
	}

	token, err := security.IssueToken([]byte(secret), subject, ttl, now)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}
