//go:build integration

package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/storage"
	"github.com/cloo-solutions/aula/internal/testutil"
)

func TestObjectStoreSnapshot_S3(t *testing.T) {
	ctx := context.Background()
	s3C := testutil.NewRustFSContainer(ctx, t)
	defer s3C.Terminate(ctx)

	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.S3AccessKey,
		SecretAccessKey: testutil.S3SecretKey,
		Bucket:          "aula-snapshots",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))
	// idempotent
	require.NoError(t, client.EnsureBucket(ctx))

	store := NewObjectStoreSnapshot(client, "vecs/all_emb.npy")

	_, err = store.LoadMatrix(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	m, err := domain.MatrixFromRows([][]float32{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	require.NoError(t, store.SaveMatrix(ctx, m))

	meta, err := client.HeadObject(ctx, "vecs/all_emb.npy")
	require.NoError(t, err)
	assert.Positive(t, meta.ContentLength)

	loaded, err := store.LoadMatrix(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.Data(), loaded.Data())
	assert.Equal(t, 3, loaded.Dim())

	require.NoError(t, store.Reset(ctx))
	_, err = store.LoadMatrix(ctx)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
