package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monkeycoder/railcheck/internal/domain"
)

func TestFileSyntax_Valid(t *testing.T) {
	in := newInput(t, map[string]string{"railpack.json": validDescriptor})
	findings := FileSyntax{}.Check(in)

	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityOK, findings[0].Severity)
	require.True(t, in.Descriptors.Primary().Parsed())
	assert.Equal(t, "uvicorn app.main:app --host 0.0.0.0 --port $PORT", in.Descriptors.Primary().Config.Deploy.StartCommand)
}

func TestFileSyntax_Missing(t *testing.T) {
	in := newInput(t, map[string]string{})
	findings := FileSyntax{}.Check(in)

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, domain.SeverityError, f.Severity)
	assert.Equal(t, domain.KindConfigMissing, f.Kind)
	assert.Equal(t, "railpack.json", f.File)
	require.True(t, f.HasFix())
	assert.Equal(t, "create railpack.json", f.SuggestedFix.Description)
	assert.ErrorIs(t, in.Descriptors.Primary().Err, ErrDescriptorMissing)
}

func TestFileSyntax_TrailingComma(t *testing.T) {
	in := newInput(t, map[string]string{"railpack.json": "{\n  \"deploy\": {\n    \"startCommand\": \"npm start\",\n  }\n}\n"})
	findings := FileSyntax{}.Check(in)

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, domain.SeverityError, f.Severity)
	assert.Equal(t, domain.KindConfigMalformed, f.Kind)
	assert.Contains(t, f.Message, "line 4")
	assert.Contains(t, f.SuggestedFix.Description, "trailing commas")
	assert.False(t, in.Descriptors.Primary().Parsed())
	assert.NotEmpty(t, in.Descriptors.Primary().Raw)
}

func TestFileSyntax_Garbage(t *testing.T) {
	in := newInput(t, map[string]string{"railpack.json": "{not json"})
	findings := FileSyntax{}.Check(in)

	require.Len(t, findings, 1)
	assert.Equal(t, domain.KindConfigMalformed, findings[0].Kind)
	assert.Contains(t, findings[0].SuggestedFix.Description, "fix the JSON syntax")
}

func TestFileSyntax_EmptyAndTrailingData(t *testing.T) {
	tests := map[string]string{
		"":          "empty document",
		"   \n":     "empty document",
		`{} {"a":1}`: "unexpected data",
	}
	for content, want := range tests {
		in := newInput(t, map[string]string{"railpack.json": content})
		findings := FileSyntax{}.Check(in)
		require.Len(t, findings, 1, "content %q", content)
		assert.Equal(t, domain.KindConfigMalformed, findings[0].Kind)
		assert.Contains(t, findings[0].Message, want)
	}
}

func TestFileSyntax_SchemaMismatch(t *testing.T) {
	in := newInput(t, map[string]string{"railpack.json": `{"deploy": {"startCommand": ["npm", "start"]}}`})
	findings := FileSyntax{}.Check(in)

	require.Len(t, findings, 1)
	assert.Equal(t, domain.KindConfigMalformed, findings[0].Kind)
	assert.Contains(t, findings[0].Message, "does not match the descriptor schema")
}

func TestFileSyntax_SecondaryDescriptor(t *testing.T) {
	in := newInput(t, map[string]string{"railpack.json": validDescriptor})
	in.Context = domain.NewRepositoryContext("/repo", "", []string{"railpack.json", "worker/railpack.json"}, false)
	findings := FileSyntax{}.Check(in)

	require.Len(t, findings, 1)
	assert.Equal(t, "worker/railpack.json", findings[0].File)
	assert.Len(t, in.Descriptors.All(), 2)
	assert.Empty(t, in.Descriptors.SkipReason(), "primary descriptor still usable")
}

func TestPosition(t *testing.T) {
	data := []byte("ab\ncd\nef")
	line, col := position(data, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, _ = position(data, 100)
	assert.Equal(t, 3, line)
}
