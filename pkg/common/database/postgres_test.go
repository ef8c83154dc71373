package database

import (
	"testing"

	"github.com/mediaid/platform/pkg/common/config"
	"github.com/stretchr/testify/assert"
)

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{
		PostgresHost:     "db",
		PostgresPort:     "5433",
		PostgresUser:     "svc",
		PostgresPassword: "secret",
		PostgresDB:       "symptoms",
		PostgresSSLMode:  "require",
	}
	assert.Equal(t, "host=db user=svc password=secret dbname=symptoms port=5433 sslmode=require", PostgresDSN(cfg))
}

func TestClosePostgresNil(t *testing.T) {
	assert.NoError(t, ClosePostgres(nil))
}
