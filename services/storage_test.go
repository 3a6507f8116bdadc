package services

import (
	"testing"

	"github.com/lac-hong-legacy/learning_hub/shared"
)

func TestStorageServiceBuildBackend(t *testing.T) {
	t.Parallel()

	cases := []struct {
		engine  string
		want    string
		wantErr bool
	}{
		{engine: shared.StorageEngineMemory, want: shared.StorageEngineMemory},
		{engine: shared.StorageEngineFile, want: shared.StorageEngineFile},
		{engine: "floppy", wantErr: true},
	}

	for _, tc := range cases {
		svc := &StorageService{engine: tc.engine, dataDir: t.TempDir()}
		backend, err := svc.buildBackend()
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: buildBackend() error = nil, want error", tc.engine)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: buildBackend() error = %v", tc.engine, err)
		}
		if backend.Name() != tc.want {
			t.Fatalf("%s: backend %s, want %s", tc.engine, backend.Name(), tc.want)
		}
	}
}
