package category

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Order(t *testing.T) {
	assert.Equal(t,
		[]string{"tech", "entertainment", "learning", "news", "shopping", "life", "social"},
		Default().Names())
}

func TestDefault_ReturnsCopy(t *testing.T) {
	d := Default()
	d[0].Keywords[0] = "mutated"
	assert.Equal(t, "github", Default()[0].Keywords[0])
}

func TestMerge(t *testing.T) {
	base := Table{
		{Name: "a", Keywords: []string{"x", "y"}},
		{Name: "b", Keywords: []string{"z"}},
	}
	merged := base.Merge(Table{
		{Name: "b", Keywords: []string{"replaced"}},
		{Name: "c", Keywords: []string{"new"}},
	})

	assert.Equal(t, Table{
		{Name: "a", Keywords: []string{"x", "y"}},
		{Name: "b", Keywords: []string{"replaced"}},
		{Name: "c", Keywords: []string{"new"}},
	}, merged)

	// base is untouched
	assert.Equal(t, []string{"z"}, base[1].Keywords)
}

func TestMerge_ReplacesNotUnions(t *testing.T) {
	merged := Default().Merge(Table{{Name: "tech", Keywords: []string{"golang"}}})

	m := NewMatcher(merged)
	assert.Equal(t, "tech", m.Match("golang blog", ""))
	assert.Equal(t, Uncategorized, m.Match("", "https://github.com"))
	assert.Equal(t, "tech", merged.Names()[0])
}

func TestTable_UnmarshalJSON_KeepsOrder(t *testing.T) {
	var table Table
	err := json.Unmarshal([]byte(`{"zeta":["z"],"alpha":["a","b"],"mid":[]}`), &table)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, table.Names())
	assert.Equal(t, []string{"a", "b"}, table[1].Keywords)
}

func TestTable_UnmarshalJSON_DuplicateKey(t *testing.T) {
	var table Table
	require.NoError(t, json.Unmarshal([]byte(`{"a":["1"],"b":["2"],"a":["3"]}`), &table))

	assert.Equal(t, Table{
		{Name: "a", Keywords: []string{"3"}},
		{Name: "b", Keywords: []string{"2"}},
	}, table)
}

func TestTable_UnmarshalJSON_Invalid(t *testing.T) {
	var table Table
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &table))
	assert.Error(t, json.Unmarshal([]byte(`{"a":"not-a-list"}`), &table))
}

func TestTable_JSONInStruct(t *testing.T) {
	var req struct {
		Categories Table `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"categories":{"b":["1"],"a":["2"]}}`), &req))
	assert.Equal(t, []string{"b", "a"}, req.Categories.Names())

	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"categories":{"b":["1"],"a":["2"]}}`, string(out))
	assert.Contains(t, string(out), `{"b":["1"],"a":["2"]}`)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := "recipes:\n  - cooking\n  - 菜谱\ntech: [golang]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Table{
		{Name: "recipes", Keywords: []string{"cooking", "菜谱"}},
		{Name: "tech", Keywords: []string{"golang"}},
	}, table)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- just\n- a list\n"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
