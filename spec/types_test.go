package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/specgraph/errors"
)

// typeFiles defines the hierarchy
//
//	type: spec | requirement
//	requirement -> requirement-type: functional | non-functional
var typeFiles = map[string]string{
	"spec/root.yml": "type: spec\n",
	"spec/spec.yml": "type: spec\nlinks: [{role: spec-refinement, uid: root, spec-key: type, spec-value: spec}]\n",
	"spec/req.yml":  "type: spec\nlinks: [{role: spec-refinement, uid: root, spec-key: type, spec-value: requirement}]\n",
	"spec/func.yml": "type: spec\nlinks: [{role: spec-refinement, uid: req, spec-key: requirement-type, spec-value: functional}]\n",
	"spec/nf.yml":   "type: spec\nlinks: [{role: spec-refinement, uid: req, spec-key: requirement-type, spec-value: non-functional}]\n",
}

func withFiles(base map[string]string, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func loadTyped(t *testing.T, files map[string]string) (*Repository, error) {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, files)
	return New(Config{Paths: []string{root}, CacheDirectory: t.TempDir(), TypeRootUID: "/spec/root"}, memoryStore(t))
}

func TestTypeResolution(t *testing.T) {
	repo, err := loadTyped(t, withFiles(typeFiles, map[string]string{
		"a.yml": "type: requirement\nrequirement-type: functional\n",
		"b.yml": "type: spec\n",
	}))
	require.NoError(t, err)

	a, _ := repo.Item("/a")
	b, _ := repo.Item("/b")
	root, _ := repo.Item("/spec/root")
	assert.Equal(t, "requirement/functional", a.Type())
	assert.Equal(t, "spec", b.Type())
	assert.Equal(t, "spec", root.Type())
	assert.Equal(t, "requirement/functional", a.Value(KeyType))
}

func TestTypeResolution_Errors(t *testing.T) {
	tests := []struct {
		name     string
		extra    map[string]string
		contains string
	}{
		{
			name:     "missing refining attribute",
			extra:    map[string]string{"c.yml": "type: requirement\n"},
			contains: "item '/c' has no 'requirement-type' attribute",
		},
		{
			name:     "unknown value",
			extra:    map[string]string{"d.yml": "type: glossary\n"},
			contains: "item '/d' has an invalid 'type' value 'glossary'",
		},
		{
			name:     "missing discriminator",
			extra:    map[string]string{"e.yml": "title: E\n"},
			contains: "item '/e' has no 'type' attribute",
		},
		{
			name: "conflicting keys",
			extra: map[string]string{
				"spec/odd.yml": "type: spec\nlinks: [{role: spec-refinement, uid: root, spec-key: kind, spec-value: odd}]\n",
			},
			contains: "use different keys",
		},
		{
			name: "duplicate value",
			extra: map[string]string{
				"spec/req2.yml": "type: spec\nlinks: [{role: spec-refinement, uid: root, spec-key: type, spec-value: requirement}]\n",
			},
			contains: "more than one refinement",
		},
		{
			name: "refinement without value",
			extra: map[string]string{
				"spec/x.yml": "type: spec\nlinks: [{role: spec-refinement, uid: root, spec-key: type}]\n",
			},
			contains: "has no 'spec-value'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadTyped(t, withFiles(typeFiles, tt.extra))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidType), "%v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestTypeResolution_Cycle(t *testing.T) {
	_, err := loadTyped(t, map[string]string{
		"spec/root.yml": "type: a\nlinks: [{role: spec-refinement, uid: a, spec-key: type, spec-value: b}]\n",
		"spec/a.yml":    "type: a\nlinks: [{role: spec-refinement, uid: root, spec-key: type, spec-value: a}]\n",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidType))
	assert.Contains(t, err.Error(), "cycle")
}

func TestTypeResolution_MissingRoot(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.yml": "type: x\n"})
	_, err := New(Config{Paths: []string{root}, CacheDirectory: t.TempDir(), TypeRootUID: "/nope"}, memoryStore(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestTypeResolution_Disabled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.yml": "title: A\n"})
	repo := loadRepo(t, Config{Paths: []string{root}, CacheDirectory: t.TempDir()}, memoryStore(t))
	a, _ := repo.Item("/a")
	assert.Equal(t, "", a.Type())
	assert.False(t, a.Has(KeyType))
}

func TestTypeResolution_VolatileItem(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, typeFiles)
	repo := loadRepo(t, Config{Paths: []string{root}, CacheDirectory: t.TempDir(), TypeRootUID: "/spec/root"}, memoryStore(t))

	extra := t.TempDir()
	writeFiles(t, extra, map[string]string{
		"ok.yml":  "type: requirement\nrequirement-type: non-functional\n",
		"bad.yml": "type: requirement\n",
	})
	ok, err := repo.AddVolatileItem(extra+"/ok.yml", "/ok")
	require.NoError(t, err)
	assert.Equal(t, "requirement/non-functional", ok.Type())

	before := repo.Len()
	_, err = repo.AddVolatileItem(extra+"/bad.yml", "/bad")
	assert.True(t, errors.Is(err, errors.ErrInvalidType))
	assert.Equal(t, before, repo.Len())
}
