package main

import "time"

// Config defines the accounts service environment variables.
type Config struct {
	Host string `env:"ACCOUNTS_HOST,default=0.0.0.0"`
	Port int    `env:"ACCOUNTS_PORT,default=8081"`

	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/accounts"`

	TokenSecret string        `env:"TOKEN_SECRET,required=true"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,default=24h"`

	LogLevel string `env:"LOG_LEVEL,default=INFO"`
}
