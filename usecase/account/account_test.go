package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository/memory"
)

func TestCreateStampsCreationTime(t *testing.T) {
	fixed := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	uc := NewCreateUseCase(memory.NewAccounts())
	uc.now = func() time.Time { return fixed }

	created, err := uc.Execute(context.Background(), domain.CreateAccountDTO{Name: "Initech", Email: "it@initech.test"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
	assert.Equal(t, fixed.UTC(), created.CreatedAt)
}

func TestValidateCreate(t *testing.T) {
	err := ValidateCreate(domain.CreateAccountDTO{Name: "", Email: "bad"})
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "email", derr.Field)
	assert.Contains(t, derr.Fields, "name")
}

func TestUpdateMissingAccount(t *testing.T) {
	name := "Ghost"
	_, err := NewUpdateUseCase(memory.NewAccounts()).Execute(context.Background(), domain.UpdateAccountDTO{ID: 42, Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
