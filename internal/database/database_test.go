package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/config"
)

func TestConnect_Memory(t *testing.T) {
	c, err := Connect(context.Background(), config.Config{StorageBackend: config.BackendMemory})
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &cache.MemoryStore{}, c.Store())
	assert.NotNil(t, c.Counter())
	assert.Nil(t, c.Redis)
}

func TestConnect_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := Connect(context.Background(), config.Config{StorageBackend: config.BackendRedis, RedisHost: mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &cache.RedisStore{}, c.Store())
	require.NoError(t, c.Store().Ping(context.Background()))
}

func TestConnect_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Connect(ctx, config.Config{StorageBackend: config.BackendRedis, RedisHost: addr})
	assert.Error(t, err)
}

func TestScyllaCluster(t *testing.T) {
	cluster := scyllaCluster(config.Config{
		ScyllaHosts:    []string{"10.0.0.1", "10.0.0.2"},
		ScyllaKeyspace: "sea_merkado_buyer",
		ScyllaUsername: "buyer",
		ScyllaPassword: "secret",
		ScyllaSSL:      true,
		ScyllaCAPath:   "/etc/scylla/ca.pem",
	})

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cluster.Hosts)
	assert.Equal(t, "sea_merkado_buyer", cluster.Keyspace)
	assert.Equal(t, gocql.Quorum, cluster.Consistency)
	require.NotNil(t, cluster.SslOpts)
	assert.Equal(t, "/etc/scylla/ca.pem", cluster.SslOpts.CaPath)
	assert.IsType(t, gocql.PasswordAuthenticator{}, cluster.Authenticator)
}
