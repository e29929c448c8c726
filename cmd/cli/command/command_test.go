package command

import (
	"bytes"
	"strings"
	"testing"

	"djrating/internal/microservices/http-api/dto"
	adminauth "djrating/internal/middleware/auth"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestHashKeyFromArgument(t *testing.T) {
	out, err := runRoot(t, "", "admin", "hash-key", "operator-key-0123456789")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, adminauth.VerifyAdminKey(hash, "operator-key-0123456789"))
}

func TestHashKeyFromStdin(t *testing.T) {
	out, err := runRoot(t, "operator-key-0123456789\n", "admin", "hash-key")
	require.NoError(t, err)

	assert.NoError(t, adminauth.VerifyAdminKey(strings.TrimSpace(out), "operator-key-0123456789"))
}

func TestHashKeyRejectsShortKey(t *testing.T) {
	_, err := runRoot(t, "", "admin", "hash-key", "short")
	assert.ErrorIs(t, err, adminauth.ErrAdminKeyTooShort)
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	printReport(cmd, &dto.BackfillReport{Processed: 4})
	printReport(cmd, &dto.BackfillReport{Processed: 3, Failed: 1, FailedIDs: []int64{9}})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "✓ recomputed 4 dj(s)", lines[0])
	assert.Equal(t, "! recomputed 3 dj(s), 1 failed: [9]", lines[1])
}
