package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumoflow/internal/domain"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sumoflow.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
access_id: id-from-file
access_key: key-from-file
root_url: https://api.eu.sumologic.com/api
start_date: "2026-08-01T00:00:00"
end_date: "2026-08-02T00:00:00"
time_zone: Europe/Berlin
log_level: debug
rate_limit: 4
tables:
  - table_name: audit
    query: _sourceCategory=audit
    query_type: records
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "id-from-file", cfg.AccessID)
	assert.Equal(t, "https://api.eu.sumologic.com/api", cfg.RootURL)
	assert.Equal(t, "Europe/Berlin", cfg.TimeZone)
	assert.Equal(t, 4.0, cfg.RateLimit)
	assert.Empty(t, cfg.Warnings)
	require.Len(t, cfg.Tables, 1)
	assert.Equal(t, "audit", cfg.Tables[0].TableName)
	require.NoError(t, cfg.Validate())
}

func TestLoadDefaultsWindowToLastDay(t *testing.T) {
	path := writeConfig(t, `
access_id: x
access_key: y
tables:
  - table_name: t
    query: q
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	start, err := time.Parse("2006-01-02T15:04:05", cfg.StartDate)
	require.NoError(t, err)
	end, err := time.Parse("2006-01-02T15:04:05", cfg.EndDate)
	require.NoError(t, err)
	assert.WithinDuration(t, end.AddDate(0, 0, -1), start, 5*time.Second)
	assert.Equal(t, "UTC", cfg.TimeZone)
	assert.NotEmpty(t, cfg.Warnings, "defaulted window is surfaced as a warning")
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("SUMO_ACCESS_ID", "id-from-env")
	t.Setenv("SUMO_ACCESS_KEY", "key-from-env")
	t.Setenv("SUMO_ENDPOINT", "https://api.us2.sumologic.com/api")

	path := writeConfig(t, `
access_id: id-from-file
access_key: key-from-file
root_url: https://api.sumologic.com/api
tables:
  - table_name: t
    query: q
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "id-from-env", cfg.AccessID)
	assert.Equal(t, "key-from-env", cfg.AccessKey)
	assert.Equal(t, "https://api.us2.sumologic.com/api", cfg.RootURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AccessID:  "id",
			AccessKey: "key",
			StartDate: "2026-08-01T00:00:00",
			EndDate:   "2026-08-02T00:00:00",
			Tables:    []TableSpec{{TableName: "t", Query: "q"}},
		}
	}

	require.NoError(t, base().Validate())

	missingCreds := base()
	missingCreds.AccessKey = ""
	var authErr *domain.AuthenticationError
	require.ErrorAs(t, missingCreds.Validate(), &authErr)

	noTables := base()
	noTables.Tables = nil
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, noTables.Validate(), &cfgErr)

	badDate := base()
	badDate.StartDate = "08/01/2026"
	require.ErrorAs(t, badDate.Validate(), &cfgErr)
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, (&Config{LogLevel: in}).SlogLevel(), in)
	}
}

func TestTableConfigsAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
access_id: x
access_key: y
start_date: "2026-08-01T00:00:00"
end_date: "2026-08-02T00:00:00"
time_zone: UTC
tables:
  - table_name: logs
    query: _sourceCategory=prod
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	tables, err := cfg.TableConfigs()
	require.NoError(t, err)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, domain.QueryTypeMessages, table.QueryType)
	assert.Equal(t, "intelligent", table.AutoParsingMode)
	assert.Equal(t, domain.TimeWindow{
		StartDate: "2026-08-01T00:00:00",
		EndDate:   "2026-08-02T00:00:00",
		TimeZone:  "UTC",
	}, table.Window)
	assert.Nil(t, table.Schema)
	assert.Empty(t, table.SchemaPath)
}

func TestTableConfigsSchemaAsPath(t *testing.T) {
	path := writeConfig(t, `
access_id: x
access_key: y
start_date: "2026-08-01T00:00:00"
end_date: "2026-08-02T00:00:00"
tables:
  - table_name: logs
    query: q
    schema: schemas/logs.json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	tables, err := cfg.TableConfigs()
	require.NoError(t, err)
	assert.Equal(t, "schemas/logs.json", tables[0].SchemaPath)
	assert.Nil(t, tables[0].Schema)
}

func TestTableConfigsInlineSchema(t *testing.T) {
	path := writeConfig(t, `
access_id: x
access_key: y
start_date: "2026-08-01T00:00:00"
end_date: "2026-08-02T00:00:00"
tables:
  - table_name: logs
    query: q
    schema:
      type: object
      properties:
        host:
          type: ["null", "string"]
      key_properties: [host]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	tables, err := cfg.TableConfigs()
	require.NoError(t, err)
	require.NotNil(t, tables[0].Schema)
	assert.Empty(t, tables[0].SchemaPath)
	require.Contains(t, tables[0].Schema.Properties, "host")
	assert.Equal(t, []string{"null", "string"}, tables[0].Schema.Properties["host"].Type)
	assert.Equal(t, []string{"host"}, tables[0].Schema.KeyProperties)
}

func TestTableConfigsRejectsBadQueryType(t *testing.T) {
	path := writeConfig(t, `
access_id: x
access_key: y
start_date: "2026-08-01T00:00:00"
end_date: "2026-08-02T00:00:00"
tables:
  - table_name: logs
    query: q
    query_type: sideways
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.TableConfigs()
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestTableConfigsMetricsOptions(t *testing.T) {
	path := writeConfig(t, `
access_id: x
access_key: y
start_date: "2026-08-01T00:00:00"
end_date: "2026-08-02T00:00:00"
tables:
  - table_name: cpu
    query: metric=CPU_Total
    query_type: metrics
    quantization: 60000
    rollup: Avg
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	tables, err := cfg.TableConfigs()
	require.NoError(t, err)

	m := tables[0].Metrics
	require.NotNil(t, m.Quantization)
	assert.Equal(t, int64(60000), *m.Quantization)
	require.NotNil(t, m.Rollup)
	assert.Equal(t, "Avg", *m.Rollup)
	assert.Nil(t, m.Timeshift)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# credentials
SUMOFLOW_TEST_A=plain
SUMOFLOW_TEST_B="double quoted"
SUMOFLOW_TEST_C='single quoted'
not-a-pair
`), 0o600))

	t.Setenv("SUMOFLOW_TEST_A", "")
	t.Setenv("SUMOFLOW_TEST_B", "")
	t.Setenv("SUMOFLOW_TEST_C", "")
	t.Setenv("SUMOFLOW_TEST_D", "already set")
	require.NoError(t, os.Unsetenv("SUMOFLOW_TEST_A"))
	require.NoError(t, os.Unsetenv("SUMOFLOW_TEST_B"))
	require.NoError(t, os.Unsetenv("SUMOFLOW_TEST_C"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "plain", os.Getenv("SUMOFLOW_TEST_A"))
	assert.Equal(t, "double quoted", os.Getenv("SUMOFLOW_TEST_B"))
	assert.Equal(t, "single quoted", os.Getenv("SUMOFLOW_TEST_C"))
	assert.Equal(t, "already set", os.Getenv("SUMOFLOW_TEST_D"))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
