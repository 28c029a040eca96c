package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/models"
)

type failingFactRepo struct {
	t *testing.T
}

func (f *failingFactRepo) CommitWiFi(ctx context.Context, sessionUID, committedBy string) (int64, error) {
	f.t.Fatal("CommitWiFi must not be called")
	return 0, nil
}

func (f *failingFactRepo) CommitHours(ctx context.Context, sessionUID, committedBy string) (int64, error) {
	f.t.Fatal("CommitHours must not be called")
	return 0, nil
}

func TestCommitRequiresSession(t *testing.T) {
	svc := NewCommitService(nil, &failingFactRepo{t}, zap.NewNop())
	res := svc.Commit(t.Context(), "  ", CategoryWiFiPassword)
	assert.Equal(t, models.StatusInvalid, res.Status)
}

func TestCommitPlaceholderCategoriesAreNoOps(t *testing.T) {
	svc := NewCommitService(nil, &failingFactRepo{t}, zap.NewNop())

	for _, category := range []string{CategoryTapList, CategoryProductOfferings, CategoryBusinessGeneral} {
		t.Run(category, func(t *testing.T) {
			res := svc.Commit(t.Context(), "session-1", category)
			assert.True(t, res.OK())
			assert.Contains(t, res.Message, "not implemented")
		})
	}
}

func TestCommitUnknownCategoryIsNoOp(t *testing.T) {
	svc := NewCommitService(nil, &failingFactRepo{t}, zap.NewNop())
	res := svc.Commit(t.Context(), "session-1", "selfies")
	assert.True(t, res.OK())
	assert.Contains(t, res.Message, "unknown category")
}
