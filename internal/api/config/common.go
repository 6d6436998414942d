package config

// Config 配置主体
type Config struct {
	Server            ServerConfig      `mapstructure:"server"`
	DB                DBConfig          `mapstructure:"database"`
	Redis             RedisConfig       `mapstructure:"redis"`
	Mongo             MongoConfig       `mapstructure:"mongo"`
	Logstash          LogstashConfig    `mapstructure:"logstash"`
	JWT               JWTConfig         `mapstructure:"jwt"`
	Chat              ChatConfig        `mapstructure:"chat"`
	Push              PushConfig        `mapstructure:"push"`
	Presence          PresenceConfig    `mapstructure:"presence"`
	MinIO             MinIOConfig       `mapstructure:"minio"`
	Kafka             KafkaConfig       `mapstructure:"kafka"`
	KafkaUserConsumer KafkaUserConsumer `mapstructure:"kafka_user_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig 消息明细库配置
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// JWTConfig 令牌配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
	Issuer      string `mapstructure:"issuer"`
}

// ChatConfig 消息策略配置
type ChatConfig struct {
	// EditWindowMinutes 发送后允许修改消息的时间窗口（分钟）
	EditWindowMinutes int `mapstructure:"edit_window_minutes"`
	// HistoryPageSize 历史消息默认分页大小
	HistoryPageSize int `mapstructure:"history_page_size"`
	// HistoryPageMax 历史消息单页上限
	HistoryPageMax int `mapstructure:"history_page_max"`
}

// PushConfig 离线推送网关配置
type PushConfig struct {
	Enable bool   `mapstructure:"enable"`
	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
}

// PresenceConfig 在线状态配置
type PresenceConfig struct {
	// TTLSeconds redis 在线标记的过期时间（秒）
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	UsePublicLink bool   `mapstructure:"use_public_link"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaUserConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
