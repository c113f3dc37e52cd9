package session

import (
	"codeclash/internal/model"
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Delete(ctx))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Set(ctx, &model.Session{Token: "tok", User: model.User{ID: "u1", Username: "alice"}, SavedAt: time.Now().UTC()}))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, model.Ref("u1"), got.User.ID)

	require.NoError(t, store.Delete(ctx))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("CLASH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CLASH_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	exerciseStore(t, NewRedisStore(client, "test-"+t.Name(), time.Minute))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("CLASH_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("CLASH_TEST_MONGODB_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(ctx)
	exerciseStore(t, NewMongoStore(client, "codeclash_test", "test-"+t.Name()))
}
