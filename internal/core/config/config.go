package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	HandlerTimeoutSec int
	MaxInFlight       int64
	CORSOrigins       []string `mapstructure:"corsorigins"`
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

// LogFile Filename 为空则只写 stdout
type LogFile struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Security struct {
	BcryptCost int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	TTLSec   int    `mapstructure:"ttlsec"`
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type S3 struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // 自建兼容服务（MinIO 等）
	PublicBaseURL   string // 为空则用 https://{bucket}.s3.{region}.amazonaws.com
	UsePathStyle    bool
}

type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
}

type Storage struct {
	Driver     string // s3 | cloudinary | memory（仅本地）
	MaxFileMB  int
	S3         S3
	Cloudinary Cloudinary
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	Security Security
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Storage  Storage
}

func (c *Config) IsProduction() bool { return c.App.Env == "production" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gestao-marketplace")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 30)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.handlertimeoutsec", 20)
	v.SetDefault("app.http.maxinflight", 300)
	v.SetDefault("app.http.corsorigins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)

	v.SetDefault("jwt.issuer", "gestao-marketplace")
	v.SetDefault("jwt.accesstokenttlmin", 24*60)
	v.SetDefault("security.bcryptcost", 12)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("redis.prefix", "marketplace:")
	v.SetDefault("redis.ttlsec", 300)

	v.SetDefault("storage.driver", "s3")
	v.SetDefault("storage.maxfilemb", 2)
}

// Load 读取 YAML（可选）+ APP_ 前缀环境变量；path 为空时取 CONFIG_PATH
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 未显式指定且默认文件不存在 → 只用默认值 + 环境变量
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || os.IsNotExist(err) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	bindEnv(v)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// bindEnv AutomaticEnv 只对 viper 已知的 key 生效，未在文件/默认值里出现的敏感项需要显式绑定
func bindEnv(v *viper.Viper) {
	for _, k := range []string{
		"jwt.secret",
		"db.dsn", "db.username", "db.password",
		"redis.addr", "redis.password", "redis.db",
		"storage.s3.bucket", "storage.s3.region", "storage.s3.accesskeyid", "storage.s3.secretaccesskey",
		"storage.s3.endpoint", "storage.s3.publicbaseurl", "storage.s3.usepathstyle",
		"storage.cloudinary.cloudname", "storage.cloudinary.apikey", "storage.cloudinary.apisecret",
	} {
		_ = v.BindEnv(k)
	}
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required (APP_JWT_SECRET)")
	}
	switch c.Storage.Driver {
	case "s3", "cloudinary", "memory":
	default:
		return fmt.Errorf("config: unsupported storage.driver %q", c.Storage.Driver)
	}
	return nil
}
