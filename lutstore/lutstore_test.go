package lutstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recordingSink struct {
	names []string
	err   error
}

func (s *recordingSink) Put(ctx context.Context, name, contentType string, data []byte) error {
	s.names = append(s.names, name)
	return s.err
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := DirSink{Dir: dir}

	if err := s.Put(context.Background(), "scattering.bin", "application/octet-stream", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "scattering.bin"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(got, []byte{1, 2, 3}); diff != "" {
		t.Errorf("Bad file contents; diff (-got +want)\n%s", diff)
	}
}

func TestMulti(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := Multi{a, b}

	if err := m.Put(context.Background(), "manifest.json", "application/json", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(b.names, []string{"manifest.json"}); diff != "" {
		t.Errorf("Second sink not written; diff (-got +want)\n%s", diff)
	}

	boom := errors.New("boom")
	failing := &recordingSink{err: boom}
	after := &recordingSink{}
	if err := (Multi{failing, after}).Put(context.Background(), "x", "", nil); !errors.Is(err, boom) {
		t.Errorf("Bad error; got %v, want %v", err, boom)
	}
	if len(after.names) != 0 {
		t.Errorf("Sink after a failure was written: %v", after.names)
	}
}

func TestGCSObjectName(t *testing.T) {
	s := NewGCSSink(nil, "bucket", "skylut/mars")
	if got, want := s.objectName("irradiance.png"), "skylut/mars/irradiance.png"; got != want {
		t.Errorf("Bad object name; got %q, want %q", got, want)
	}
}
