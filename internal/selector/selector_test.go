package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		want Parsed
	}{
		{
			name: "empty expression",
			expr: "",
			want: Parsed{},
		},
		{
			name: "plain css",
			expr: "div.title",
			want: Parsed{CSS: "div.title"},
		},
		{
			name: "plain css with combinators",
			expr: "ul.photos > li img",
			want: Parsed{CSS: "ul.photos > li img"},
		},
		{
			name: "at shorthand",
			expr: "a@href",
			want: Parsed{CSS: "a", Attr: "href"},
		},
		{
			name: "attr directive",
			expr: "a::attr(href)",
			want: Parsed{CSS: "a", Attr: "href"},
		},
		{
			name: "attr directive on class selector",
			expr: "div.title::attr(data-id)",
			want: Parsed{CSS: "div.title", Attr: "data-id"},
		},
		{
			name: "last at wins",
			expr: "a@b@c",
			want: Parsed{CSS: "a@b", Attr: "c"},
		},
		{
			name: "attribute value selector split on at",
			expr: "a[rel=nofollow]@href",
			want: Parsed{CSS: "a[rel=nofollow]", Attr: "href"},
		},
		{
			name: "directive beats shorthand",
			expr: "a@href::attr(src)",
			want: Parsed{CSS: "a@href", Attr: "src"},
		},
		{
			name: "whitespace before at",
			expr: "img.photo @src",
			want: Parsed{CSS: "img.photo", Attr: "src"},
		},
		{
			name: "whitespace around attr name",
			expr: "img.photo@ src ",
			want: Parsed{CSS: "img.photo", Attr: "src"},
		},
		{
			name: "whitespace before directive",
			expr: "img.photo ::attr(src)",
			want: Parsed{CSS: "img.photo", Attr: "src"},
		},
		{
			name: "bare at yields empty css",
			expr: "@href",
			want: Parsed{CSS: "", Attr: "href"},
		},
		{
			name: "trailing at yields empty attr",
			expr: "a@",
			want: Parsed{CSS: "a", Attr: ""},
		},
		{
			name: "empty directive name is not a directive",
			expr: "a::attr()",
			want: Parsed{CSS: "a::attr()"},
		},
		{
			name: "directive not at end is not a directive",
			expr: "a::attr(href) b",
			want: Parsed{CSS: "a::attr(href) b"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Parse(tt.expr))
		})
	}
}

func TestParsedHasAttr(t *testing.T) {
	t.Parallel()

	assert.False(t, Parse("div.title").HasAttr())
	assert.False(t, Parse("a@").HasAttr())
	assert.True(t, Parse("a@href").HasAttr())
	assert.True(t, Parse("a::attr(href)").HasAttr())
}
