package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMainConfigFromFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeFile(t, ".", "x9.yaml", `
input_dir: ./deposits
max_concurrency: 2
archive_on_success: true
log_format: json
smtp:
  host: mail.example.com
  port: 587
  from: deposits@example.com
  tls_policy: mandatory
customers:
  driver: xlsx
  dsn: ./customers.xlsx
  sheet: Customers
email:
  bcc: [ops@example.com]
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./deposits", cfg.InputDir)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.True(t, cfg.ArchiveOnSuccess)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "mandatory", cfg.SMTP.TLSPolicy)
	assert.Equal(t, "xlsx", cfg.Customers.Driver)
	assert.Equal(t, "Customers", cfg.Customers.Sheet)
	assert.Equal(t, []string{"ops@example.com"}, cfg.Email.BCC)

	// Defaults fill the rest.
	assert.Equal(t, "./reports", cfg.ReportsDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "confirms", cfg.Customers.Table)
	assert.Equal(t, "long_name", cfg.Customers.NameColumn)
	assert.Equal(t, "Deposit Received: {file}", cfg.Email.SubjectFormat)
}

func TestLoadMainConfigDefaultPathMayBeMissing(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadMainConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMainConfigExplicitPathMustExist(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := LoadMainConfig("missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadMainConfigBadYAML(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeFile(t, ".", "bad.yaml", "smtp: [unclosed")

	_, err := LoadMainConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadMainConfigEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeFile(t, ".", "x9.yaml", "smtp:\n  host: file.example.com\n")

	t.Setenv("X9_SMTP_HOST", "env.example.com")
	t.Setenv("X9_SMTP_PORT", "2525")
	t.Setenv("X9_CUSTOMERS_DRIVER", "postgres")
	t.Setenv("X9_CUSTOMERS_DSN", "postgres://localhost/x9")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "postgres", cfg.Customers.Driver)
	assert.Equal(t, "postgres://localhost/x9", cfg.Customers.DSN)
}

func TestLoadMainConfigDotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	writeFile(t, ".", ".env", "X9_SMTP_FROM=dotenv@example.com\n")

	// Register cleanup for a variable godotenv is about to set.
	t.Setenv("X9_SMTP_FROM", "")
	require.NoError(t, os.Unsetenv("X9_SMTP_FROM"))

	cfg, err := LoadMainConfig("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv@example.com", cfg.SMTP.From)
}

func TestLoadMainConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"bad port env": "",
		"driver":       "customers:\n  driver: mongo\n",
		"tls policy":   "smtp:\n  tls_policy: always\n",
		"log format":   "log_format: xml\n",
		"concurrency":  "max_concurrency: -1\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			path := writeFile(t, ".", "x9.yaml", content)
			if name == "bad port env" {
				t.Setenv("X9_SMTP_PORT", "smtp")
			}

			_, err := LoadMainConfig(path)
			assert.Error(t, err)
		})
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (stands in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
