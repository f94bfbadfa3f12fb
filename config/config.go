package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const DefaultEnvFile = "secrets.env"

// Env file keys.
const (
	KeyNotionToken        = "NOTION_API_KEY"
	KeyCourseDatabaseID   = "COURSE_DATABASE_ID"
	KeySemesterDatabaseID = "SEMESTER_DATABASE_ID"
	KeyParentPageID       = "PARENT_PAGE_ID"
	KeyQuoteBlockID       = "QUOTE_BLOCK_ID"
	KeyTemplatePageID     = "TEMPLATE_PAGE_ID"
	KeyUnsplashAccessKey  = "UNSPLASH_ACCESS_KEY"
	KeyUnsplashQuery      = "UNSPLASH_QUERY"
	KeySpreadsheetID      = "SPREADSHEET_ID"
	KeyCredentialsFile    = "GOOGLE_CREDENTIALS_FILE"
	KeyPort               = "PORT"
	KeyLogLevel           = "LOG_LEVEL"
	KeyLogPretty          = "LOG_PRETTY"
	KeyPageSize           = "PAGE_SIZE"
	KeyMaxRetries         = "MAX_RETRIES"
	KeyRetryDelay         = "RETRY_DELAY"
	KeyRequestTimeout     = "REQUEST_TIMEOUT"
	KeyHandlerTimeout     = "HANDLER_TIMEOUT"
	KeyProvisionResults   = "PROVISION_RESULTS"
)

type Config struct {
	EnvFile string

	NotionToken        string
	NotionAPIBase      string
	NotionVersion      string
	CourseDatabaseID   string
	SemesterDatabaseID string
	ParentPageID       string
	QuoteBlockID       string
	TemplatePageID     string

	UnsplashAccessKey string
	UnsplashAPIBase   string
	UnsplashQuery     string

	SpreadsheetID       string
	CredentialsFilePath string
	ReportSheetName     string

	Port             string
	LogLevel         string
	LogPretty        bool
	PageSize         int
	MaxRetries       int
	RetryDelay       time.Duration
	RequestTimeout   time.Duration
	HandlerTimeout   time.Duration
	ProvisionResults bool
}

// Defaults holds every value a fresh install runs with.
var Defaults = Config{
	EnvFile:          DefaultEnvFile,
	NotionAPIBase:    "https://api.notion.com/v1",
	NotionVersion:    "2022-06-28",
	UnsplashAPIBase:  "https://api.unsplash.com",
	UnsplashQuery:    "college study",
	ReportSheetName:  "CGPA Report",
	Port:             "3000",
	LogLevel:         "info",
	PageSize:         100,
	MaxRetries:       0,
	RetryDelay:       2000 * time.Millisecond,
	RequestTimeout:   60 * time.Second,
	HandlerTimeout:   5 * time.Minute,
	ProvisionResults: true,
}

// IncompleteError reports required settings that are still missing.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return "setup incomplete: missing " + strings.Join(e.Missing, ", ")
}

func IsIncomplete(err error) bool {
	var ie *IncompleteError
	return errors.As(err, &ie)
}

// Load reads the env file at path (a missing file is not an error) and lets
// process environment variables fill keys the file does not set.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultEnvFile
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(err, "reading env file %s", path)
		}
		values = map[string]string{}
	}

	for _, key := range allKeys {
		if _, ok := values[key]; ok {
			continue
		}
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	cfg, err := FromMap(values)
	if err != nil {
		return nil, err
	}
	cfg.EnvFile = path
	return cfg, nil
}

// FromMap builds a Config from defaults overlaid with values.
func FromMap(values map[string]string) (*Config, error) {
	cfg := Defaults
	if err := cfg.Apply(values); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Apply overlays values onto c. Unknown keys are ignored.
func (c *Config) Apply(values map[string]string) error {
	for key, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" && typedKeys[key] {
			continue
		}
		switch key {
		case KeyNotionToken:
			c.NotionToken = v
		case KeyCourseDatabaseID:
			c.CourseDatabaseID = v
		case KeySemesterDatabaseID:
			c.SemesterDatabaseID = v
		case KeyParentPageID:
			c.ParentPageID = v
		case KeyQuoteBlockID:
			c.QuoteBlockID = v
		case KeyTemplatePageID:
			c.TemplatePageID = v
		case KeyUnsplashAccessKey:
			c.UnsplashAccessKey = v
		case KeyUnsplashQuery:
			if v != "" {
				c.UnsplashQuery = v
			}
		case KeySpreadsheetID:
			c.SpreadsheetID = v
		case KeyCredentialsFile:
			c.CredentialsFilePath = v
		case KeyPort:
			if v != "" {
				c.Port = v
			}
		case KeyLogLevel:
			if v != "" {
				c.LogLevel = v
			}
		case KeyLogPretty:
			b, err := parseBool(key, v)
			if err != nil {
				return err
			}
			c.LogPretty = b
		case KeyProvisionResults:
			b, err := parseBool(key, v)
			if err != nil {
				return err
			}
			c.ProvisionResults = b
		case KeyPageSize:
			n, err := parseInt(key, v)
			if err != nil {
				return err
			}
			c.PageSize = n
		case KeyMaxRetries:
			n, err := parseInt(key, v)
			if err != nil {
				return err
			}
			c.MaxRetries = n
		case KeyRetryDelay:
			d, err := parseDuration(key, v)
			if err != nil {
				return err
			}
			c.RetryDelay = d
		case KeyRequestTimeout:
			d, err := parseDuration(key, v)
			if err != nil {
				return err
			}
			c.RequestTimeout = d
		case KeyHandlerTimeout:
			d, err := parseDuration(key, v)
			if err != nil {
				return err
			}
			c.HandlerTimeout = d
		}
	}

	if c.PageSize <= 0 || c.PageSize > 100 {
		c.PageSize = 100
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = Defaults.HandlerTimeout
	}
	return nil
}

// Validate checks everything the sync and aggregation paths need before any
// remote call is made.
func (c *Config) Validate() error {
	var missing []string
	if c.NotionToken == "" {
		missing = append(missing, KeyNotionToken)
	}
	if c.CourseDatabaseID == "" {
		missing = append(missing, KeyCourseDatabaseID)
	}
	if c.SemesterDatabaseID == "" {
		missing = append(missing, KeySemesterDatabaseID)
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}

func (c *Config) ExportEnabled() bool {
	return c.SpreadsheetID != "" && c.CredentialsFilePath != ""
}

func (c *Config) ListenAddr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// Persist merges updates into the env file at path, creating it if needed.
func Persist(path string, updates map[string]string) error {
	if path == "" {
		path = DefaultEnvFile
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			return errors.Wrapf(err, "reading env file %s", path)
		}
		values = map[string]string{}
	}

	for k, v := range updates {
		values[k] = v
	}

	if err := godotenv.Write(values, path); err != nil {
		return errors.Wrapf(err, "writing env file %s", path)
	}
	return nil
}

var allKeys = []string{
	KeyNotionToken, KeyCourseDatabaseID, KeySemesterDatabaseID, KeyParentPageID,
	KeyQuoteBlockID, KeyTemplatePageID, KeyUnsplashAccessKey, KeyUnsplashQuery,
	KeySpreadsheetID, KeyCredentialsFile, KeyPort, KeyLogLevel, KeyLogPretty, KeyPageSize,
	KeyMaxRetries, KeyRetryDelay, KeyRequestTimeout, KeyHandlerTimeout,
	KeyProvisionResults,
}

var typedKeys = map[string]bool{
	KeyLogPretty: true, KeyProvisionResults: true, KeyPageSize: true,
	KeyMaxRetries: true, KeyRetryDelay: true, KeyRequestTimeout: true,
	KeyHandlerTimeout: true,
}

func parseInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func parseDuration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
