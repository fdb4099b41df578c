package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitFirebaseWithoutCredentials(t *testing.T) {
	_, err := InitFirebase(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestInitFirebaseMissingFile(t *testing.T) {
	_, err := InitFirebase(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}
