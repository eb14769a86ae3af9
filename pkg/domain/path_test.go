package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_String(t *testing.T) {
	assert.Equal(t, "$", Path(nil).String())
	assert.Equal(t, "$.a.b", Path{Key("a"), Key("b")}.String())
	assert.Equal(t, "$.items[0].n", Path{Key("items"), Index(0), Key("n")}.String())
	assert.Equal(t, `$["content-type"]`, Path{Key("content-type")}.String())
	assert.Equal(t, `$[""]`, Path{Key("")}.String())
}

func TestPath_Pointer(t *testing.T) {
	assert.Equal(t, "", Path(nil).Pointer())
	assert.Equal(t, "/a/0", Path{Key("a"), Index(0)}.Pointer())
	assert.Equal(t, "/a~1b/c~0d", Path{Key("a/b"), Key("c~d")}.Pointer())
}

func TestPath_AppendDoesNotAlias(t *testing.T) {
	parent := make(Path, 1, 8)
	parent[0] = Key("root")

	left := parent.Append(Key("left"))
	right := parent.Append(Key("right"))

	assert.Equal(t, "$.root.left", left.String())
	assert.Equal(t, "$.root.right", right.String())
	assert.Len(t, parent, 1)
}

func TestPath_Compare(t *testing.T) {
	a := Path{Key("items"), Index(1)}
	b := Path{Key("items"), Index(10)}
	c := Path{Key("items")}

	assert.Negative(t, a.Compare(b))
	assert.Positive(t, a.Compare(c))
	assert.Zero(t, a.Compare(Path{Key("items"), Index(1)}))
	assert.Negative(t, Path{Index(3)}.Compare(Path{Key("a")}))
}

func TestPath_JSONRoundTrip(t *testing.T) {
	in := Path{Key("items"), Index(2), Key("7")}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `["items", 2, "7"]`, string(data))

	var out Path
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.Equal(out), "got %s", out)
	assert.True(t, out[1].IsIndex())
	assert.False(t, out[2].IsIndex())
}

func TestPath_UnmarshalRejectsGarbage(t *testing.T) {
	var p Path
	assert.Error(t, json.Unmarshal([]byte(`[true]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[1.5]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &p))
}
