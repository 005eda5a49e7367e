package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"inventory-server/config"
)

func TestDialNetwork(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tcp4", dialNetwork(4, "tcp"))
	assert.Equal(t, "tcp6", dialNetwork(6, "tcp"))
	assert.Equal(t, "tcp", dialNetwork(0, "tcp"))
	assert.Equal(t, "unix", dialNetwork(4, "unix"))
}

func TestClientOptions(t *testing.T) {
	t.Parallel()

	opts := ClientOptions(config.DatabaseConfig{
		MongoURI:               "mongodb://localhost:27017",
		ServerSelectionTimeout: 10 * time.Second,
		Family:                 4,
	})
	require.NoError(t, opts.Validate())
	require.NotNil(t, opts.ServerSelectionTimeout)
	assert.Equal(t, 10*time.Second, *opts.ServerSelectionTimeout)

	d, ok := opts.Dialer.(*familyDialer)
	require.True(t, ok)
	assert.Equal(t, 4, d.family)
}

func TestConnect_MissingURI(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), config.DatabaseConfig{ServerSelectionTimeout: time.Second})
	assert.ErrorContains(t, err, "MONGO_URI")
}

func TestConnect_UnreachableServerTimesOut(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, err := Connect(context.Background(), config.DatabaseConfig{
		MongoURI:               "mongodb://127.0.0.1:1/?connect=direct",
		Name:                   "inventory_test",
		ServerSelectionTimeout: 200 * time.Millisecond,
		Family:                 4,
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestMergeSet(t *testing.T) {
	t.Parallel()

	got := mergeSet(bson.M{"quantity": 3.0}, bson.M{"updated_at": "now"})
	assert.Equal(t, bson.M{"quantity": 3.0, "updated_at": "now"}, got)
	assert.Equal(t, bson.M{"updated_at": "now"}, mergeSet(nil, bson.M{"updated_at": "now"}))
}
