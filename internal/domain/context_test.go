package domain_test

import (
	"testing"

	"github.com/monkeycoder/railcheck/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRepositoryContext_CopiesConfigFiles(t *testing.T) {
	files := []string{"railpack.json", "./config/railway.json"}
	ctx := domain.NewRepositoryContext("/repo", "api", files, true)

	files[0] = "mutated"
	got := ctx.ConfigFiles()
	assert.Equal(t, []string{"railpack.json", "config/railway.json"}, got)

	got[0] = "mutated again"
	assert.Equal(t, "railpack.json", ctx.PrimaryConfig())
	assert.Equal(t, "api", ctx.Label())
	assert.True(t, ctx.Fix())
}

func TestRepositoryContext_RootLabel(t *testing.T) {
	ctx := domain.NewRepositoryContext("/repo", "", nil, false)
	assert.Equal(t, ".", ctx.Label())
	assert.Equal(t, "", ctx.PrimaryConfig())
}
