package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var confPath string

func init() {
	flag.StringVar(&confPath, "conf", "configs/", "default config path")
}

// SetPath overrides the -conf flag for binaries that parse their own flags.
func SetPath(path string) {
	confPath = path
}

var (
	Server server
	MySql  mysql
	Reward = DefaultReward()
	Redis  redis
	Nats   nats
)

// Server settings
type server struct {
	Env         string `yaml:"env"`
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	SignSecret  string `yaml:"sign_secret"`
	BotUsername string `yaml:"bot_username"`
	Driver      string `yaml:"driver"`
	SqlitePath  string `yaml:"sqlite_path"`
}

type mysql struct {
	Host         string `yaml:"host"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// RewardConf holds the program constants. Amounts are decimal strings so
// they survive the yaml round trip without float rounding.
type RewardConf struct {
	CheckinReward       string `yaml:"checkin_reward"`
	ReferralBonus       string `yaml:"referral_bonus"`
	CommissionRate      string `yaml:"commission_rate"`
	LevelUnit           string `yaml:"level_unit"`
	UTCOffsetHours      int    `yaml:"utc_offset_hours"`
	LeaderboardSize     int    `yaml:"leaderboard_size"`
	MaxRetries          int    `yaml:"max_retries"`
	LeaderboardSchedule string `yaml:"leaderboard_schedule"`
	ReconcileSchedule   string `yaml:"reconcile_schedule"`
}

// DefaultReward returns the values the program shipped with.
func DefaultReward() RewardConf {
	return RewardConf{
		CheckinReward:       "5",
		ReferralBonus:       "50",
		CommissionRate:      "0.1",
		LevelUnit:           "10",
		UTCOffsetHours:      4,
		LeaderboardSize:     100,
		MaxRetries:          3,
		LeaderboardSchedule: "0 */1 * * * *",
		ReconcileSchedule:   "0 30 0 * * *",
	}
}

type redis struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type nats struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

func Init() {
	unmarshal("server", &Server, map[string]interface{}{
		"host":       "0.0.0.0",
		"port":       "8080",
		"log_level":  "info",
		"log_format": "text",
		"driver":     "mysql",
	})
	if Server.Driver == "mysql" {
		unmarshal("mysql", &MySql, map[string]interface{}{
			"charset":        "utf8mb4",
			"max_idle_conns": 10,
			"max_open_conns": 50,
		})
	}
	def := DefaultReward()
	unmarshal("reward", &Reward, map[string]interface{}{
		"checkin_reward":       def.CheckinReward,
		"referral_bonus":       def.ReferralBonus,
		"commission_rate":      def.CommissionRate,
		"level_unit":           def.LevelUnit,
		"utc_offset_hours":     def.UTCOffsetHours,
		"leaderboard_size":     def.LeaderboardSize,
		"max_retries":          def.MaxRetries,
		"leaderboard_schedule": def.LeaderboardSchedule,
		"reconcile_schedule":   def.ReconcileSchedule,
	})
	unmarshalOptional("redis", &Redis, map[string]interface{}{"ttl_seconds": 60})
	unmarshalOptional("nats", &Nats, map[string]interface{}{"subject_prefix": "tonix"})
}

func newViper(name string, defaults map[string]interface{}) *viper.Viper {
	v := viper.New()
	v.SetConfigName(name)
	v.AddConfigPath(confPath)
	v.SetEnvPrefix("TONIX_" + strings.ToUpper(name))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

func decode(v *viper.Viper, out interface{}) error {
	return v.Unmarshal(out, func(config *mapstructure.DecoderConfig) {
		config.TagName = "yaml"
	})
}

func unmarshal(name string, out interface{}, defaults map[string]interface{}) {
	v := newViper(name, defaults)
	err := v.ReadInConfig() // Find and read the config file
	if err != nil {         // Handle errors reading the config file
		panic(fmt.Errorf("Fatal error config file: %s \n", err))
	}

	err = decode(v, out)
	if err != nil {
		panic(fmt.Errorf("Fatal error unmarshal config file: %s \n", err))
	}
}

// redis and nats may be left out entirely
func unmarshalOptional(name string, out interface{}, defaults map[string]interface{}) {
	v := newViper(name, defaults)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("Fatal error config file: %s \n", err))
		}
	}

	if err := decode(v, out); err != nil {
		panic(fmt.Errorf("Fatal error unmarshal config file: %s \n", err))
	}
}
