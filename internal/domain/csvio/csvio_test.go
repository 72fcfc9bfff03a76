package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Basic(t *testing.T) {
	res := Parse("name,category\nChatGPT,AI Tools\nCanva,Image Tools\n")

	assert.Empty(t, res.Errors)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 2, res.Rows[0].Number)
	assert.Equal(t, "ChatGPT", res.Rows[0].Get("name"))
	assert.Equal(t, "Image Tools", res.Rows[1].Get("category"))
	assert.Equal(t, "", res.Rows[1].Get("missing"))
}

func TestParse_ShortRowReported(t *testing.T) {
	res := Parse("a,b,c\n1,2,3\n4,5\n6,7,8")

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "1", res.Rows[0].Get("a"))
	assert.Equal(t, "8", res.Rows[1].Get("c"))
	assert.Equal(t, []string{"Row 3: Column count mismatch"}, res.Errors)
}

func TestParse_BlankLinesNotCounted(t *testing.T) {
	res := Parse("\n  \na,b\n\n   \n1,2\n\t\n3\n")

	require.Len(t, res.Rows, 1)
	assert.Equal(t, 2, res.Rows[0].Number)
	assert.Equal(t, []string{"Row 3: Column count mismatch"}, res.Errors)
}

func TestParse_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n\t\n"} {
		res := Parse(in)
		assert.Empty(t, res.Rows, "input %q", in)
		assert.Equal(t, []string{MsgEmpty}, res.Errors, "input %q", in)
	}
}

func TestParse_HeadersMissing(t *testing.T) {
	res := Parse(" , ,\n1,2,3\n")
	assert.Empty(t, res.Rows)
	assert.Equal(t, []string{MsgHeadersMissing}, res.Errors)
}

func TestParse_Quoting(t *testing.T) {
	in := "name , description\n" +
		`  Tool A  ,"Says ""hi"", then
leaves"` + "\n" +
		`Tool B,"  padded  "` + "\n"

	res := Parse(in)
	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, 2)

	assert.Equal(t, "Tool A", res.Rows[0].Get("name"))
	assert.Equal(t, "Says \"hi\", then\nleaves", res.Rows[0].Get("description"))
	assert.Equal(t, "  padded  ", res.Rows[1].Get("description"))
	assert.Equal(t, 3, res.Rows[1].Number)
}

func TestParse_CRLFAndBOM(t *testing.T) {
	res := Parse("\uFEFFname,pricing\r\nA,Free\r\nB,Paid\r\n")
	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "A", res.Rows[0].Get("name"))
	assert.Equal(t, "Paid", res.Rows[1].Get("pricing"))
}

func TestWriteParse_RoundTrip(t *testing.T) {
	header := []string{"name", "description"}
	records := [][]string{
		{"Comma, Inc", `She said "ok"` + "\nthen left"},
		{" leading", "trailing "},
		{"plain", ""},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, header, records))

	res := Parse(buf.String())
	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, len(records))
	for i, rec := range records {
		assert.Equal(t, rec[0], res.Rows[i].Get("name"))
		assert.Equal(t, rec[1], res.Rows[i].Get("description"))
	}
}

func TestWriteDownload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDownload(&buf, []string{"email", "subscribed_at"},
		[][]string{{"a@example.com", "2024-01-02T03:04:05Z"}}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\uFEFF"))
	assert.Equal(t, "\uFEFFemail,subscribed_at\r\na@example.com,2024-01-02T03:04:05Z\r\n", out)

	res := Parse(out)
	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "a@example.com", res.Rows[0].Get("email"))
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a,b", `"a,b"`},
		{`say "x"`, `"say ""x"""`},
		{"line\nbreak", "\"line\nbreak\""},
		{" pad", `" pad"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.in), "Escape(%q)", tt.in)
	}
}
