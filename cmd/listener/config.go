package main

import "github.com/kelseyhightower/envconfig"

type Config struct {
	// LISTENER_ADDR is the live channel URL, e.g. ws://localhost:8080/api/v1/ws
	Addr    string `envconfig:"LISTENER_ADDR" default:"ws://localhost:8080/api/v1/ws"`
	Token   string `envconfig:"LISTENER_TOKEN" required:"true"`
	Partner string `envconfig:"LISTENER_PARTNER"`
	Colours bool   `envconfig:"LISTENER_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
