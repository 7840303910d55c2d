package minio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patscope/pkg/errors"
)

type fakeObjectAPI struct {
	bucketExists bool
	madeBucket   bool
	uploads      map[string]string // object → file path
	putErr       error
}

func (f *fakeObjectAPI) BucketExists(context.Context, string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeObjectAPI) MakeBucket(context.Context, string, miniogo.MakeBucketOptions) error {
	f.madeBucket = true
	return nil
}

func (f *fakeObjectAPI) FPutObject(_ context.Context, _ string, object, filePath string, _ miniogo.PutObjectOptions) (miniogo.UploadInfo, error) {
	if f.putErr != nil {
		return miniogo.UploadInfo{}, f.putErr
	}
	if f.uploads == nil {
		f.uploads = map[string]string{}
	}
	f.uploads[object] = filePath
	info, err := os.Stat(filePath)
	if err != nil {
		return miniogo.UploadInfo{}, err
	}
	return miniogo.UploadInfo{Size: info.Size()}, nil
}

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestArchive_StoreRunArtifacts(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeArtifact(t, dir, "dataset.csv", "appln_id\n1\n")
	jsonPath := writeArtifact(t, dir, "report.json", `{"score":100}`)

	api := &fakeObjectAPI{}
	a := newArchiveWithAPI(api, "patscope-artifacts", nil)

	err := a.StoreRunArtifacts(context.Background(), "run-123", []string{csvPath, jsonPath})
	require.NoError(t, err)

	assert.Equal(t, csvPath, api.uploads["run-123/dataset.csv"])
	assert.Equal(t, jsonPath, api.uploads["run-123/report.json"])
}

func TestArchive_MissingFile(t *testing.T) {
	a := newArchiveWithAPI(&fakeObjectAPI{}, "patscope-artifacts", nil)

	err := a.StoreRunArtifacts(context.Background(), "run-123", []string{"/nonexistent/file.csv"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeArchiveError, errors.GetCode(err))
}

func TestArchive_UploadFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeArtifact(t, dir, "dataset.csv", "x")

	a := newArchiveWithAPI(&fakeObjectAPI{putErr: assert.AnError}, "patscope-artifacts", nil)

	err := a.StoreRunArtifacts(context.Background(), "run-123", []string{path})
	require.Error(t, err)
	assert.Equal(t, errors.CodeArchiveError, errors.GetCode(err))
}

func TestArchive_EnsureBucketCreatesWhenAbsent(t *testing.T) {
	api := &fakeObjectAPI{bucketExists: false}
	a := newArchiveWithAPI(api, "patscope-artifacts", nil)

	require.NoError(t, a.ensureBucket(context.Background()))
	assert.True(t, api.madeBucket)
}

func TestArchive_EnsureBucketSkipsWhenPresent(t *testing.T) {
	api := &fakeObjectAPI{bucketExists: true}
	a := newArchiveWithAPI(api, "patscope-artifacts", nil)

	require.NoError(t, a.ensureBucket(context.Background()))
	assert.False(t, api.madeBucket)
}
