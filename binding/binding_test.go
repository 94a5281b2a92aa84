package binding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var data any
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	return data
}

func TestInterpolatePaths(t *testing.T) {
	data := decode(t, `{"topic":"design","author":{"name":"Jobs"},"tags":["a","b"],"year":1997,"ratio":0.5}`)

	assert.Equal(t, "What is design?", Interpolate("What is ${topic}?", data))
	assert.Equal(t, "Jobs", Interpolate("${ author.name }", data))
	assert.Equal(t, "b", Interpolate("${tags[1]}", data))
	assert.Equal(t, "1997 0.5", Interpolate("${year} ${ratio}", data))
}

func TestInterpolateMissingKeepsPlaceholder(t *testing.T) {
	data := decode(t, `{"tags":["a"]}`)
	assert.Equal(t, "${missing}", Interpolate("${missing}", data))
	assert.Equal(t, "${tags[3]}", Interpolate("${tags[3]}", data))
	assert.Equal(t, "${x}", Interpolate("${x}", nil))
}

func TestInterpolateFallback(t *testing.T) {
	data := decode(t, `{"name":"Ada","empty":null}`)
	assert.Equal(t, "Hi Ada", Interpolate("Hi ${name|friend}", data))
	assert.Equal(t, "Hi friend", Interpolate("Hi ${nick|friend}", data))
	assert.Equal(t, "Hi friend", Interpolate("Hi ${nick|friend}", nil))
	assert.Equal(t, "[]", Interpolate("[${empty|}]", data))
}

func TestUnresolved(t *testing.T) {
	data := decode(t, `{"a":1}`)
	assert.Equal(t, []string{"${b}", "${c.d}"}, Unresolved("${a} ${b} ${c.d} ${e|x}", data))
	assert.Empty(t, Unresolved("plain text", data))
}
