package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserService_UpdateProfile_InvalidSubjectID(t *testing.T) {
	s := NewUserService(nil)

	_, err := s.UpdateProfile(context.Background(), "not-a-uuid", "Ada Lovelace")
	assert.ErrorContains(t, err, "invalid subject id")
}

func TestUserService_FindByID_InvalidSubjectID(t *testing.T) {
	s := NewUserService(nil)

	_, err := s.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorContains(t, err, "invalid subject id")
}
