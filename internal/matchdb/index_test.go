package matchdb

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Word,Ordinal,Reduction\nTEST,74,11\n"

func mustBuild(t *testing.T, csv string) *Index {
	t.Helper()
	ix, err := Build(strings.NewReader(csv), int64(len(csv)), nil)
	require.NoError(t, err)
	return ix
}

func TestBuild_Sample(t *testing.T) {
	ix := mustBuild(t, sampleCSV)

	assert.Equal(t, []Entry{{Word: "TEST", Scheme: "Ordinal"}}, ix.Lookup(74))
	assert.Equal(t, []Entry{{Word: "TEST", Scheme: "Reduction"}}, ix.Lookup(11))

	missing := ix.Lookup(999)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)

	assert.True(t, ix.Has(74))
	assert.False(t, ix.Has(999))
	assert.Equal(t, 1, ix.Rows())
	assert.Equal(t, 2, ix.Len())
}

func TestBuild_Cells(t *testing.T) {
	csv := "Word,A,B,C,D,E,F\n" +
		"alpha, 74 ,74.5,abc,,+12,-5\n"
	ix := mustBuild(t, csv)

	if diff := cmp.Diff([]Entry{{"alpha", "A"}, {"alpha", "B"}}, ix.Lookup(74)); diff != "" {
		t.Errorf("Lookup(74) mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Entry{{"alpha", "E"}}, ix.Lookup(12))
	assert.Equal(t, []Entry{{"alpha", "F"}}, ix.Lookup(-5))
	assert.Equal(t, 3, ix.Len())
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"74", 74, true},
		{" 74 ", 74, true},
		{"74.5", 74, true},
		{"1e3", 1, true},
		{"-12", -12, true},
		{"+7", 7, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"x1", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		assert.Equal(t, tt.ok, ok, "%q", tt.in)
		assert.Equal(t, tt.want, got, "%q", tt.in)
	}
}

func TestBuild_HeaderNames(t *testing.T) {
	csv := "\"Word\", \"Ordinal\" ,\n" +
		"A,1,2,3\n"
	ix := mustBuild(t, csv)

	assert.Equal(t, []Entry{{"A", "Ordinal"}}, ix.Lookup(1))
	assert.Equal(t, []Entry{{"A", "Cipher 2"}}, ix.Lookup(2))
	assert.Equal(t, []Entry{{"A", "Cipher 3"}}, ix.Lookup(3))
}

func TestBuild_QuotedWords(t *testing.T) {
	ix := mustBuild(t, "Word,Ordinal\n\"Hello, World\",124\n")
	assert.Equal(t, []Entry{{"Hello, World", "Ordinal"}}, ix.Lookup(124))
}

func TestBuild_MultiLineQuotedField(t *testing.T) {
	ix := mustBuild(t, "Word,Ordinal\n\"two\nlines\",5\nlast,\"7\nnote\"\n")
	assert.Equal(t, []Entry{{"two\nlines", "Ordinal"}}, ix.Lookup(5))
	assert.Equal(t, []Entry{{"last", "Ordinal"}}, ix.Lookup(7))
	assert.Equal(t, 2, ix.Rows())
}

func TestBuild_UnclosedQuote(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		line string
	}{
		{"data row", "Word,Ordinal\nA,1\n\"broken,2\nB,3\nC,4\n", "line 3"},
		{"no trailing newline", "Word,Ordinal\nA,1\nB,\"3\nC,4", "line 3"},
		{"header", "\"Word,Ordinal\nA,1\n", "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(strings.NewReader(tt.csv), int64(len(tt.csv)), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "never closed")
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestBuild_SkipsShortRowsAndEmptyWords(t *testing.T) {
	csv := "Word,Ordinal\n" +
		"lonely\n" +
		" ,33\n" +
		"kept,33\n"
	ix := mustBuild(t, csv)

	assert.Equal(t, []Entry{{"kept", "Ordinal"}}, ix.Lookup(33))
	assert.Equal(t, 3, ix.Rows())
}

func TestBuild_Deduplicates(t *testing.T) {
	csv := "Word,Ordinal,Ordinal,Reduction\n" +
		"TEST,74,74,74\n" +
		"TEST,74\n" +
		"OTHER,74\n"
	ix := mustBuild(t, csv)

	want := []Entry{{"TEST", "Ordinal"}, {"TEST", "Reduction"}, {"OTHER", "Ordinal"}}
	if diff := cmp.Diff(want, ix.Lookup(74)); diff != "" {
		t.Errorf("Lookup(74) mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Empty(t *testing.T) {
	var got []int
	ix, err := Build(strings.NewReader(""), 0, func(p int) { got = append(got, p) })
	require.NoError(t, err)
	assert.Zero(t, ix.Rows())
	assert.Empty(t, ix.Lookup(1))
	assert.Equal(t, []int{100}, got)
}

func TestBuild_Progress(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Word,Ordinal\n")
	for i := 0; i < 200; i++ {
		sb.WriteString("w,")
		sb.WriteString(strings.Repeat("1", 1+i%5))
		sb.WriteString("\n")
	}
	csv := sb.String()

	var got []int
	ix, err := build(context.Background(), strings.NewReader(csv), int64(len(csv)), 10, func(p int) {
		got = append(got, p)
	})
	require.NoError(t, err)
	assert.Equal(t, 200, ix.Rows())

	require.NotEmpty(t, got)
	assert.Equal(t, 100, got[len(got)-1])
	for i, p := range got {
		assert.GreaterOrEqual(t, p, 50)
		assert.LessOrEqual(t, p, 100)
		if i > 0 {
			assert.Greater(t, p, got[i-1])
		}
	}
	assert.Greater(t, len(got), 2)
}

func TestBuild_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	csv := "Word,Ordinal\n" + strings.Repeat("w,1\n", 20)
	_, err := build(ctx, strings.NewReader(csv), int64(len(csv)), 5, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNilIndex(t *testing.T) {
	var ix *Index
	assert.Empty(t, ix.Lookup(1))
	assert.NotNil(t, ix.Lookup(1))
	assert.False(t, ix.Has(1))
	assert.Zero(t, ix.Len())
	assert.Zero(t, ix.Rows())
}

func TestLookup_ReturnsCopy(t *testing.T) {
	ix := mustBuild(t, sampleCSV)
	got := ix.Lookup(74)
	got[0].Word = "CHANGED"
	assert.Equal(t, "TEST", ix.Lookup(74)[0].Word)
}
