package store

import (
	"context"
	"testing"

	"watthome/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDeviceCreateRequiresOwner(t *testing.T) {
	s := NewDeviceStore(nil, nil, nil, zap.NewNop())
	_, err := s.Create(context.Background(), &models.Device{DeviceName: "Lamp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "userId")
}
