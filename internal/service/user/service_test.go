package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medik/hospital-api/internal/model"
	"github.com/medik/hospital-api/internal/repository/memory"
)

func addDoctor(users *memory.UserRepository, first, last, specialty string) *model.User {
	u := &model.User{
		Base:      model.Base{ID: uuid.New()},
		FirstName: first,
		LastName:  last,
		Specialty: &specialty,
		Roles:     []model.Role{model.RoleDoctor},
	}
	users.Add(u)
	return u
}

func TestListDoctors(t *testing.T) {
	users := memory.NewUserRepository()
	addDoctor(users, "Анна", "Петрова", "Терапевт")
	addDoctor(users, "Олег", "Иванов", "Хирург")
	users.Add(&model.User{
		Base:  model.Base{ID: uuid.New()},
		Roles: []model.Role{model.RolePatient},
	})

	svc := NewService(users)

	doctors, err := svc.ListDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, doctors, 2, "patients must not appear in the directory")

	// Ordered by last name.
	assert.Equal(t, "Иванов", doctors[0].LastName)
	assert.Equal(t, "Петрова", doctors[1].LastName)
	require.NotNil(t, doctors[1].Specialty)
	assert.Equal(t, "Терапевт", *doctors[1].Specialty)
}

func TestListDoctorsServedFromCache(t *testing.T) {
	users := memory.NewUserRepository()
	addDoctor(users, "Анна", "Петрова", "Терапевт")

	svc := NewService(users)

	first, err := svc.ListDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A new doctor appears within the TTL: the directory stays as cached.
	addDoctor(users, "Олег", "Иванов", "Хирург")

	second, err := svc.ListDoctors(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 1)

	// Flushing the cache picks up the addition.
	svc.cache.Flush()

	third, err := svc.ListDoctors(context.Background())
	require.NoError(t, err)
	assert.Len(t, third, 2)
}
