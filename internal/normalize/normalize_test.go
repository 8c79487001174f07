package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Windows(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "touch",
			in:   "touch demo/index.html",
			want: `New-Item -Path "demo\index.html" -ItemType File`,
		},
		{
			name: "touch several files",
			in:   "touch demo/index.html demo/style.css",
			want: `New-Item -Path "demo\index.html","demo\style.css" -ItemType File`,
		},
		{
			name: "mkdir",
			in:   "mkdir demo",
			want: `New-Item -ItemType Directory -Path "demo"`,
		},
		{
			name: "mkdir -p nested",
			in:   "mkdir -p site/assets/img",
			want: `New-Item -ItemType Directory -Path "site\assets\img" -Force`,
		},
		{
			name: "quoted path",
			in:   `mkdir "my site"`,
			want: `New-Item -ItemType Directory -Path "my site"`,
		},
		{
			name: "echo redirect",
			in:   `echo <h1 class="title">Hi</h1> > demo/index.html`,
			want: "\"<h1 class=`\"title`\">Hi</h1>\" | Out-File -Encoding utf8 \"demo\\index.html\"",
		},
		{
			name: "echo quoted content",
			in:   `echo "hello" > a.txt`,
			want: `"hello" | Out-File -Encoding utf8 "a.txt"`,
		},
		{
			name: "echo append",
			in:   "echo more >> notes/a.txt",
			want: `"more" | Out-File -Encoding utf8 -Append "notes\a.txt"`,
		},
		{
			name: "cat redirect",
			in:   "cat templates/base.html > demo/index.html",
			want: `Get-Content "templates\base.html" | Out-File -Encoding utf8 "demo\index.html"`,
		},
		{
			name: "surrounding whitespace",
			in:   "  mkdir demo  ",
			want: `New-Item -ItemType Directory -Path "demo"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in, Windows))
		})
	}
}

func TestNormalize_Unmatched(t *testing.T) {
	inputs := []string{
		"",
		"ls -la",
		"dir",
		"touch",
		"mkdir -p",
		"echo hello",
		"cat index.html",
		"mkdir demo && cd demo",
		"touch a; rm -rf b",
		"cat a.txt | sort > b.txt",
		"New-Item -ItemType Directory -Path \"demo\"",
	}

	for _, in := range inputs {
		assert.Equal(t, in, Normalize(in, Windows), "windows: %q", in)
		assert.Equal(t, in, Normalize(in, Posix), "posix: %q", in)
	}
}

func TestNormalize_Posix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "native", in: "mkdir -p demo/css", want: "mkdir -p demo/css"},
		{name: "mkdir", in: `mkdir demo\css`, want: "mkdir demo/css"},
		{name: "mkdir -p", in: `mkdir -p site\assets\img`, want: "mkdir -p site/assets/img"},
		{name: "touch", in: `touch demo\index.html demo\style.css`, want: "touch demo/index.html demo/style.css"},
		{name: "cat", in: `cat a\b.txt > c\d.txt`, want: "cat a/b.txt > c/d.txt"},
		{name: "echo keeps content", in: `echo C:\temp >> notes\a.txt`, want: `echo C:\temp >> notes/a.txt`},
		{name: "control operator", in: `mkdir a\b && cd a`, want: `mkdir a\b && cd a`},
		{name: "other verb", in: `ls demo\css`, want: `ls demo\css`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := Normalize(tt.in, Posix)
			assert.Equal(t, tt.want, once)
			assert.Equal(t, once, Normalize(once, Posix))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"touch demo/index.html",
		"mkdir demo",
		"mkdir -p a/b",
		`echo "say \"hi\"" > out.txt`,
		"echo x >> y",
		"cat a/b.txt > c/d.txt",
		`cat a\b.txt > c\d.txt`,
		`touch demo\index.html`,
		"npm init -y",
	}

	for _, p := range []Platform{Posix, Windows} {
		for _, in := range inputs {
			once := Normalize(in, p)
			assert.Equal(t, once, Normalize(once, p), "%s: %q", p, in)
		}
	}
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform("win32")
	require.NoError(t, err)
	assert.Equal(t, Windows, p)

	p, err = ParsePlatform("Linux")
	require.NoError(t, err)
	assert.Equal(t, Posix, p)

	p, err = ParsePlatform("")
	require.NoError(t, err)
	assert.Equal(t, Current(), p)

	_, err = ParsePlatform("amiga")
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	assert.Equal(t, `demo\css\style.css`, Path("demo/css/style.css", Windows))
	assert.Equal(t, "demo/css/style.css", Path(`demo\css\style.css`, Posix))
}
