package main

import (
	"testing"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	environ := env.EnvSet{
		"BADGER_FILEPATH": "/tmp/direct-chat",
		"JWT_SECRET":      "secret",
	}

	var config Config
	err := env.Unmarshal(environ, &config)

	req.NoError(err)
	req.Equal("localhost", config.Host)
	req.Equal(8080, config.Port)
	req.Equal([]string{"*"}, config.AllowedOrigins())
	req.False(config.CookieSecure)
}

func TestConfig_Missing_Secret(t *testing.T) {
	var config Config
	err := env.Unmarshal(env.EnvSet{"BADGER_FILEPATH": "/tmp/direct-chat"}, &config)

	require.Error(t, err)
}

func TestConfig_AllowedOrigins(t *testing.T) {
	config := Config{CORSAllowedOrigins: " http://a.example , ,http://b.example"}

	require.Equal(t, []string{"http://a.example", "http://b.example"}, config.AllowedOrigins())
}
