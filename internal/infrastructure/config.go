package infra

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pot-code/study-tracker/internal/calendar"
	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix env prefix for viper
const EnvPrefix = "STUDY"

// runtime environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// AppConfig App option object
type AppConfig struct {
	AppID          string        `mapstructure:"app_id" json:"app_id" yaml:"app_id" validate:"required"`                        // Application ID
	Host           string        `mapstructure:"host" json:"host" yaml:"host"`                                                  // bind host address
	Port           int           `mapstructure:"port" json:"port" yaml:"port" validate:"min=0,max=65535"`                       // bind listen port
	Env            string        `mapstructure:"env" json:"env" yaml:"env" validate:"oneof=development production"`             // runtime environment
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout" validate:"min=0"` // zero disables the timeout
	Timezone       string        `mapstructure:"timezone" json:"timezone" yaml:"timezone"`                                      // calendar zone of the day buckets
	IDLength       int           `mapstructure:"id_length" json:"id_length" yaml:"id_length" validate:"min=8"`                  // length of generated ID for entities
	Locale         string        `mapstructure:"locale" json:"locale" yaml:"locale" validate:"oneof=en zh"`                     // language of validation messages
	API            struct {
		RequireUserID bool `mapstructure:"require_user_id" json:"require_user_id" yaml:"require_user_id"` // reject list/summary queries without userId
	} `mapstructure:"api" json:"api" yaml:"api"`
	Database struct {
		Driver   string `mapstructure:"driver" json:"driver" yaml:"driver" validate:"oneof=mysql postgres sqlite"`        // driver name
		Host     string `mapstructure:"host" json:"host" yaml:"host"`                                                     // server host
		MaxConn  int32  `mapstructure:"maxconn" json:"maxconn" yaml:"maxconn" validate:"min=1"`                           // maximum opening connections number
		Password string `mapstructure:"password" json:"-" yaml:"password"`                                                // db password
		Port     int    `mapstructure:"port" json:"port" yaml:"port"`                                                     // server port
		Protocol string `mapstructure:"protocol" json:"protocol" yaml:"protocol" validate:"omitempty,oneof=tcp udp unix"` // connection protocol, eg.tcp
		Query    string `mapstructure:"query" json:"query" yaml:"query"`                                                  // DSN query parameter
		Schema   string `mapstructure:"schema" json:"schema" yaml:"schema" validate:"required"`                           // use schema, database file for sqlite
		User     string `mapstructure:"username" json:"username" yaml:"username"`                                         // db username
	} `mapstructure:"database" json:"database" yaml:"database"`
	Logging struct {
		FilePath string `mapstructure:"file_path" json:"file_path" yaml:"file_path"`                            // log file path
		Level    string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"` // global logging level
	} `mapstructure:"logging" json:"logging" yaml:"logging"`
	KVStore struct {
		Host     string `mapstructure:"host" json:"host" yaml:"host"`                 // empty keeps task lists in process memory
		Port     int    `mapstructure:"port" json:"port" yaml:"port"`                 // bind listen port
		Password string `mapstructure:"password" json:"-" yaml:"password"`            // password for security reasons
		DB       int    `mapstructure:"db" json:"db" yaml:"db" validate:"min=0,max=15"` // redis logical database
	} `mapstructure:"kv" json:"kv" yaml:"kv"`
	DevOP struct {
		APM     bool `mapstructure:"apm" json:"apm" yaml:"apm"`             // enable apm tracing
		Profile bool `mapstructure:"profile" json:"profile" yaml:"profile"` // expose pprof and expvar in development
	} `mapstructure:"devop" json:"devop" yaml:"devop"`
}

// Location calendar zone named by Timezone
func (c *AppConfig) Location() (*time.Location, error) {
	return calendar.LoadLocation(c.Timezone)
}

// DBConfig connection options of the configured database
func (c *AppConfig) DBConfig() *driver.DBConfig {
	return &driver.DBConfig{
		Driver:   c.Database.Driver,
		Host:     c.Database.Host,
		MaxConn:  c.Database.MaxConn,
		Password: c.Database.Password,
		Port:     c.Database.Port,
		Protocol: c.Database.Protocol,
		Query:    c.Database.Query,
		Schema:   c.Database.Schema,
		User:     c.Database.User,
	}
}

// RegisterFlags define every config key on flags
func RegisterFlags(flags *pflag.FlagSet) {
	// app
	flags.String("env_file", ".env", "dotenv file loaded before reading the environment, ignored when missing")
	flags.String("host", "", "binding address")
	flags.String("app_id", "study-tracker", "application identifier")
	flags.String("env", EnvDevelopment, "runtime environment, can be 'development' or 'production'")
	flags.Int("port", 4000, "listening port")
	flags.Duration("request_timeout", 10*time.Second, "abort requests running longer than this(m, s and ms units are supported), 0 disables it")
	flags.String("timezone", "Local", "IANA time zone used to split sessions into calendar days, eg.Europe/Berlin")
	flags.Int("id_length", 21, "set length of generated ID for entities")
	flags.String("locale", "en", "language of validation messages, can be 'en' or 'zh'")
	flags.Bool("api.require_user_id", false, "reject session list and summary queries without userId")

	// database
	flags.String("database.driver", driver.DriverSQLite, "database driver to use, can be 'mysql', 'postgres' or 'sqlite'")
	flags.String("database.host", "127.0.0.1", "database host")
	flags.Int("database.port", 3306, "database server port")
	flags.String("database.protocol", "", "connection protocol(if mysql is used, this flag must be set), eg.tcp")
	flags.String("database.username", "", "database username (required unless sqlite)")
	flags.String("database.password", "", "database password")
	flags.String("database.schema", "data/study.db", "database schema, or the database file when the driver is sqlite")
	flags.String("database.query", "", "additional DSN query parameters('?' is auto prefixed)")
	flags.Int32("database.maxconn", 20, `max connection count, if you encounter a "too many connections" error, please consider
increasing the max_connection value of your db server, or lower this value`)

	// logging
	flags.String("logging.level", "info", "logging level")
	flags.String("logging.file_path", "", "log to file")

	// kv storage
	flags.String("kv.host", "", "redis host, task lists are kept in memory when empty")
	flags.Int("kv.port", 6379, "kv server port")
	flags.String("kv.password", "", "kv server password")
	flags.Int("kv.db", 0, "redis logical database")

	// DevOp
	flags.Bool("devop.apm", false, "enable apm metrics")
	flags.Bool("devop.profile", false, "expose /debug/pprof and /debug/vars in development")
}

// InitConfig read app config from the parsed flags, the dotenv file and the environment
func InitConfig(flags *pflag.FlagSet) (*AppConfig, error) {
	if envFile, err := flags.GetString("env_file"); err == nil && envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("loading %s: %w", envFile, err)
			}
		}
	}

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config = new(AppConfig)
	if err := v.Unmarshal(config); err != nil {
		return nil, err
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *AppConfig) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("mapstructure")
		if name == "-" || name == "" {
			return ""
		}
		return name
	})

	var msg []string
	err := validate.Struct(config)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, field := range verrs {
			namespace := field.Namespace()
			fieldName := namespace[strings.IndexByte(namespace, '.')+1:] // trim top level namespace
			switch field.Tag() {
			case "required":
				msg = append(msg, fmt.Sprintf("%s is required", fieldName))
			case "oneof":
				msg = append(msg, fmt.Sprintf("%s must be one of (%s)", fieldName, field.Param()))
			case "min":
				msg = append(msg, fmt.Sprintf("%s must be at least %s", fieldName, field.Param()))
			case "max":
				msg = append(msg, fmt.Sprintf("%s must be at most %s", fieldName, field.Param()))
			default:
				msg = append(msg, fmt.Sprintf("%s is invalid", fieldName))
			}
		}
	} else if err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	if config.Database.Driver != driver.DriverSQLite && config.Database.User == "" {
		msg = append(msg, fmt.Sprintf("database.username is required by %s", config.Database.Driver))
	}
	if _, err := config.Location(); err != nil {
		msg = append(msg, fmt.Sprintf("timezone is invalid: %s", err))
	}

	if len(msg) > 0 {
		return fmt.Errorf("failed to validate config: \n%s", strings.Join(msg, "\n"))
	}
	return nil
}
