package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Integration tests for PostgresStore and RedisStore against real servers
// started with testcontainers-go. Run with:
//
//	GO_TEST_INTEGRATION=1 go test ./internal/kv -run Integration -v

// repoRoot resolves the module root from this file so db/ migrations are
// found regardless of the working directory.
func repoRoot() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))
}

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}
}

func startContainer(t *testing.T, req tc.ContainerRequest) (host, port string) {
	t.Helper()
	ctx := context.Background()
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err = c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, nat.Port(req.ExposedPorts[0]))
	require.NoError(t, err)
	return host, mapped.Port()
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "tips:shown:u1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "tips:shown:u1", `{"date":"2026-10-16"}`))
	require.NoError(t, s.Set(ctx, "tips:shown:u1", `{"date":"2026-10-17"}`))

	v, ok, err := s.Get(ctx, "tips:shown:u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"date":"2026-10-17"}`, v)
}

func TestIntegration_PostgresStore(t *testing.T) {
	skipUnlessIntegration(t)

	host, port := startContainer(t, tc.ContainerRequest{
		Image:        "docker.io/postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	})
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ddl, err := os.ReadFile(filepath.Join(repoRoot(), "db", "2026-10-01-005-create-kv-store.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(ddl))
	require.NoError(t, err)

	exerciseStore(t, NewPostgresStore(pool))
}

func TestIntegration_RedisStore(t *testing.T) {
	skipUnlessIntegration(t)

	host, port := startContainer(t, tc.ContainerRequest{
		Image:        "docker.io/redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	})

	client := NewRedisClient(RedisOptions{Address: host + ":" + port, PoolSize: 4})
	require.NoError(t, Ping(context.Background(), client))

	s := NewRedisStore(client, "nutritionist:test:", 0)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}
