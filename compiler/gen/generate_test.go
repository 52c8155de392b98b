package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmitter renders a minimal file per artifact kind so the generator
// logic can be exercised without the full Go emitter.
type stubEmitter struct {
	g *Generator
}

func (e *stubEmitter) GenConstants(set *ArtifactSet) *jen.File {
	f := e.g.NewFile()
	f.Const().Id(set.Entity + "Table").Op("=").Lit(set.Table.Name)
	return f
}

func (e *stubEmitter) GenDtos(set *ArtifactSet) *jen.File {
	f := e.g.NewFile()
	f.Type().Id(set.FullDto.Name).Struct()
	return f
}

func (e *stubEmitter) GenMappings(set *ArtifactSet) *jen.File { return nil }
func (e *stubEmitter) GenProjections(set *ArtifactSet) *jen.File { return nil }

func (e *stubEmitter) GenRepository(set *ArtifactSet) *jen.File {
	f := e.g.NewFile()
	f.Type().Id(set.Repository.Name).Struct()
	return f
}

func (e *stubEmitter) GenDao(set *ArtifactSet) *jen.File { return nil }

func TestGeneratorWritesFiles(t *testing.T) {
	sets, diag := deriveTables(t, &Config{}, usersBuilder(), postsBuilder())
	require.False(t, diag.HasErrors())

	dir := t.TempDir()
	g := NewGenerator(sets, dir).WithPackage("store").WithWorkers(2)
	g.WithEmitter(&stubEmitter{g: g})
	require.NoError(t, g.Generate(context.Background()))

	for _, name := range []string{
		"user_columns.go", "user_dto.go", "user_repository.go",
		"post_columns.go", "post_dto.go", "post_repository.go",
	} {
		buf, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(buf), "Code generated by tablegen. DO NOT EDIT.")
		assert.Contains(t, string(buf), "package store")
	}

	// Nil renders produce no files.
	_, err := os.Stat(filepath.Join(dir, "user_mapping.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestGeneratorRequiresEmitter(t *testing.T) {
	g := NewGenerator(nil, t.TempDir())
	err := g.Generate(context.Background())
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestGeneratorCustomHeader(t *testing.T) {
	sets, diag := deriveTables(t, &Config{}, usersBuilder())
	require.False(t, diag.HasErrors())

	dir := t.TempDir()
	g := NewGenerator(sets, dir).WithPackage("store").WithHeader("Code generated by acme. DO NOT EDIT.")
	g.WithEmitter(&stubEmitter{g: g})
	require.NoError(t, g.Generate(context.Background()))

	buf, err := os.ReadFile(filepath.Join(dir, "user_dto.go"))
	require.NoError(t, err)
	assert.Contains(t, string(buf), "Code generated by acme. DO NOT EDIT.")
}

func TestGeneratorCustomTemplate(t *testing.T) {
	sets, diag := deriveTables(t, &Config{}, usersBuilder())
	require.False(t, diag.HasErrors())

	tmpl := NewTemplate("names", `var {{ camel .Entity }}TableName = {{ quote .Table.Name }}
var {{ camel .Entity }}FieldCount = {{ len .FullDto.Fields }}
`)

	dir := t.TempDir()
	g := NewGenerator(sets, dir).WithPackage("store").WithTemplates(tmpl)
	g.WithEmitter(&stubEmitter{g: g})
	require.NoError(t, g.Generate(context.Background()))

	buf, err := os.ReadFile(filepath.Join(dir, "user_names.go"))
	require.NoError(t, err)
	out := string(buf)
	assert.Contains(t, out, "package store")
	assert.Contains(t, out, `var userTableName = "users"`)
	assert.Contains(t, out, "var userFieldCount = 4")
}

func TestTemplateErrors(t *testing.T) {
	set := &ArtifactSet{Entity: "User"}

	t.Run("parse error", func(t *testing.T) {
		tmpl := NewTemplate("bad", "{{ .Entity")
		_, err := tmpl.execute("store", "hdr", set)
		require.Error(t, err)
	})

	t.Run("invalid output", func(t *testing.T) {
		tmpl := NewTemplate("bad", "not go code {{ .Entity }}")
		_, err := tmpl.execute("store", "hdr", set)
		require.Error(t, err)
	})
}
